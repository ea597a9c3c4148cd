package main

import "github.com/user/trimcrop-cli/cmd"

func main() {
	cmd.Execute()
}
