package main

import "github.com/sw33tLie/kwscope/cmd"

func main() {
	cmd.Execute()
}
