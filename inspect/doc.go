// Package inspect answers questions about a registry without running
// anything: direct dependencies and extensions, where a task was defined,
// the layer decomposition of a set of targets and a listing of every
// target with a one-line title.
package inspect
