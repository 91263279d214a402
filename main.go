// The main package for the linkweaver executable.
package main

import (
	"github.com/mbellgrove/linkweaver/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
