package runner

import (
	"strings"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/logger"
	"github.com/kbukum/butler/registry"
)

// overrides maps task name to input name to value.
type overrides map[string]map[string]any

// parseOverrides splits every "<task>.<input>" key on its last dot, so
// task names may themselves contain dots.
func parseOverrides(raw map[string]any) (overrides, error) {
	ov := make(overrides, len(raw))
	for key, value := range raw {
		i := strings.LastIndexByte(key, '.')
		if i <= 0 || i == len(key)-1 {
			return nil, goerrors.InvalidOverride(key)
		}
		name, input := key[:i], key[i+1:]
		if ov[name] == nil {
			ov[name] = make(map[string]any)
		}
		ov[name][input] = value
	}
	return ov, nil
}

// warnUnmatched logs overrides that cannot reach any task input.
func (ov overrides) warnUnmatched(reg *registry.Registry, log *logger.Logger) {
	for name, inputs := range ov {
		t, err := reg.Lookup(name)
		if err != nil {
			log.Warn("override names an unknown task", logger.Fields(logger.FieldTask, name))
			continue
		}
		for input := range inputs {
			if !t.Inputs.Declares(input) {
				log.Warn("override names an undeclared input", logger.Fields(
					logger.FieldTask, name,
					"input", input,
				))
			}
		}
	}
}
