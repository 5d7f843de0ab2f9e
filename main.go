// The main package for the harvester executable.
package main

import (
	"github.com/kasunw/tripitaka-harvester/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
