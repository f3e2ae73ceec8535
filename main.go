package main

import "mspro-labs/bean-atlas/cmd"

func main() {
	cmd.Execute()
}
