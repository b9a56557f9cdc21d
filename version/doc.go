// Package version reports which butler build is running.
//
// Release builds set the version, commit and build time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/butler/version.Version=1.0.0"
//
// Builds installed with go install fall back to the module version and
// VCS stamps recorded by the Go toolchain.
package version
