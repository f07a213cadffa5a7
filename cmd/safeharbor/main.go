// safeharbor is the unified CLI: serve, migrate, estimate, keygen.
package main

import "github.com/safeharbor-io/safeharbor/internal/interfaces/cli"

func main() {
	cli.Execute()
}

//Personal.AI order the ending
