// The main package for the sitesnap executable.
package main

import "github.com/sitesnap/sitesnap/cmd"

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
