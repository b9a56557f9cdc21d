// Package cli implements the butler command line: flag parsing, loading
// the task file, dispatching to an inspector or the runner, and printing
// results with exit codes taken from the error taxonomy.
package cli
