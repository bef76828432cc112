package main

import "github.com/mimminou/pdb2pqr/cmd"

func main() {
	cmd.Execute() // initialize cobra commands
}
