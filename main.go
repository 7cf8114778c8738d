// The main package for the crickwatch executable.
package main

import (
	"github.com/mkotecha/crickwatch/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
