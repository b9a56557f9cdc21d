// Command butler is a lightweight meta build system.
//
// Usage:
//
//	butler [-D KEY=VALUE]... [-f FILE] [-j N] [-s|-v]... [--depends|--extends|--describe|--graph] [TARGET...]
package main

import (
	"context"
	"os"

	"github.com/kbukum/butler/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
