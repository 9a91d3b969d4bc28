package main

import "github.com/kamal-hamza/dkanim-cli/cmd"

func main() {
	cmd.Execute()
}
