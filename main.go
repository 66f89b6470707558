package main

import "github.com/edukit/classpilot/cmd"

func main() {
	cmd.Execute()
}
