// Command domq parses, formats, evaluates and inverts search domains.
package main

import (
	"os"

	"github.com/roach88/domq/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
