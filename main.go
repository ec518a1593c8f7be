package main

import "flakeforge/cmd"

func main() {
	cmd.Execute()
}
