package cli

import (
	"strings"

	"go.yaml.in/yaml/v3"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/logger"
)

// Inspectors selectable on the command line. At most one may be given.
const (
	InspectDepends  = "depends"
	InspectExtends  = "extends"
	InspectDescribe = "describe"
	InspectGraph    = "graph"
)

// options holds the parsed command line.
type options struct {
	defines    []string
	file       string
	configFile string
	jobs       int
	silent     int
	verbose    int
	version    bool

	depends  bool
	extends  bool
	describe bool
	graph    bool
}

// verbosity combines -v and -s on the logger's verbosity scale.
func (o *options) verbosity() int {
	return logger.Verbosity(o.verbose, o.silent)
}

// inspector returns the selected inspector, or "" to run targets.
func (o *options) inspector() string {
	switch {
	case o.depends:
		return InspectDepends
	case o.extends:
		return InspectExtends
	case o.describe:
		return InspectDescribe
	case o.graph:
		return InspectGraph
	}
	return ""
}

// ParseDefines turns KEY=VALUE pairs into an override map. Values are
// read as YAML scalars or flow collections, so 4 is an int and true a
// bool; anything that does not parse stays a string. A later pair
// replaces an earlier one with the same key.
func ParseDefines(defines []string) (map[string]any, error) {
	if len(defines) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(defines))
	for _, d := range defines {
		key, raw, ok := strings.Cut(d, "=")
		if !ok || key == "" {
			return nil, goerrors.InvalidInput("define", "expected KEY=VALUE, got "+d)
		}
		out[key] = parseValue(raw)
	}
	return out, nil
}

func parseValue(raw string) any {
	if raw == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
		return raw
	}
	// "a: b" is a mapping to YAML but almost certainly a string here.
	if _, isMap := v.(map[string]any); isMap && !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return raw
	}
	return v
}
