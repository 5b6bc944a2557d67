// Command taskctl manages the smart task list from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/jrazmi/smarttasks/sdk/environment"
)

var build = "develop"

// taskctl reads the same store configuration as the server
var appName = "SMARTTASKS"

func main() {
	if err := environment.LoadEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "loading .env:", err)
		os.Exit(1)
	}

	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
