package main

import "github.com/calegria/focus-cli/cmd"

func main() {
	cmd.Execute()
}
