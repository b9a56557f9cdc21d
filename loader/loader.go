package loader

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/kbukum/butler/errors"
	"github.com/kbukum/butler/logger"
	"github.com/kbukum/butler/process"
	"github.com/kbukum/butler/registry"
	"github.com/kbukum/butler/task"
)

// Loader registers the tasks of task files into a registry. A Loader
// remembers every file it has loaded and never loads one twice.
type Loader struct {
	reg      *registry.Registry
	base     string
	resolver *process.Resolver
	stderr   io.Writer
	log      *logger.Logger

	mu      sync.Mutex
	loaded  map[string]bool
	loading map[string]bool
	files   []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithBaseDir sets the directory relative Include paths resolve against.
// Defaults to the working directory.
func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.base = dir }
}

// WithResolver sets the resolver used to find task shells.
func WithResolver(r *process.Resolver) Option {
	return func(l *Loader) {
		if r != nil {
			l.resolver = r
		}
	}
}

// WithStderr streams the stderr of every shell task to w while it runs.
func WithStderr(w io.Writer) Option {
	return func(l *Loader) { l.stderr = w }
}

// WithLogger sets the loader's logger.
func WithLogger(log *logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a Loader registering into reg.
func New(reg *registry.Registry, opts ...Option) *Loader {
	l := &Loader{
		reg:      reg,
		resolver: process.DefaultResolver,
		loaded:   make(map[string]bool),
		loading:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.Get("loader")
	}
	return l
}

// Include loads the task file at path, relative paths resolving against
// the base dir, together with everything it includes. Loading a file a
// second time is a no-op once it has loaded successfully; a file that
// failed is attempted again. Any failure is reported as LOAD_ERROR.
//
// Tasks are registered in file order, so when a later task of a file
// fails to register, the tasks before it stay in the registry.
func (l *Loader) Include(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	base := l.base
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return goerrors.LoadError(path, err)
		}
		base = wd
	}
	return l.include(base, path)
}

// Files returns the absolute paths of every loaded file in load order.
func (l *Loader) Files() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.files...)
}

func (l *Loader) include(base, path string) error {
	abs, err := canonical(base, path)
	if err != nil {
		return goerrors.LoadError(path, err)
	}
	if l.loaded[abs] || l.loading[abs] {
		l.log.Trace("already loaded", logger.Fields(logger.FieldFile, abs))
		return nil
	}

	l.loading[abs] = true
	defer delete(l.loading, abs)
	if err := l.load(abs); err != nil {
		return err
	}
	l.loaded[abs] = true
	return nil
}

// load reads, parses and registers one file; its includes go first.
func (l *Loader) load(abs string) error {
	data, err := os.ReadFile(abs)
	if err != nil {
		return goerrors.LoadError(abs, err)
	}
	f, err := Parse(data)
	if err != nil {
		return goerrors.LoadError(abs, err)
	}

	dir := filepath.Dir(abs)
	for _, inc := range f.Include {
		if err := l.include(dir, inc); err != nil {
			return err
		}
	}

	for i := range f.Tasks {
		if err := l.register(abs, dir, &f.Tasks[i]); err != nil {
			return goerrors.LoadError(abs, err)
		}
	}

	l.files = append(l.files, abs)
	l.log.Debug("task file loaded", logger.Fields(logger.FieldFile, abs, "tasks", len(f.Tasks)))
	return nil
}

func (l *Loader) register(file, dir string, def *Definition) error {
	workDir := dir
	if def.Dir != "" {
		workDir = def.Dir
		if !filepath.IsAbs(workDir) {
			workDir = filepath.Join(dir, workDir)
		}
	}

	inputs := task.Inputs{Positional: def.Inputs, Keyword: def.Keyword}
	action := newShellAction(def, workDir, inputs, l)

	_, err := l.reg.Register(def.Name, action,
		registry.DependsOnNamed(def.Depends...),
		registry.ExtendsNamed(def.Extends...),
		registry.WithInputs(inputs),
		registry.WithDoc(def.Doc),
		registry.WithLocation(file, def.Line),
		registry.WithDir(workDir),
	)
	return err
}

// canonical returns the absolute, symlink-resolved form of path.
func canonical(base, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
