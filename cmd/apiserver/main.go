// apiserver runs the SafeHarbor API server only, for deployments that build
// one binary per process instead of using the combined CLI.
package main

import (
	"fmt"
	"os"

	"github.com/safeharbor-io/safeharbor/internal/interfaces/cli"
)

func main() {
	root := cli.NewRootCommand()
	root.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

//Personal.AI order the ending
