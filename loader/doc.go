// Package loader reads YAML task files into a registry.
//
// A task file lists shell tasks and may include other task files:
//
//	include: [tools/lint.yml]
//	tasks:
//	  - name: build
//	    doc: Build everything.
//	    depends: [generate]
//	    run: go build ./...
//
// Includes are resolved relative to the including file and each file is
// loaded at most once, keyed by its absolute, symlink-resolved path.
// Included files are registered before the tasks of the including file,
// so a task may depend on anything its includes define.
//
// A shell task receives each of its inputs as an environment variable
// BUTLER_<INPUT> holding the JSON encoding of the input's sources, and
// reports its trimmed stdout as the "stdout" attribute. With output: json
// the stdout must be a JSON object whose keys become attributes; a boolean
// "changed" key sets the changed bit.
package loader
