package main

import "github.com/akc-copilot3/autoreply/cmd"

func main() {
	cmd.Execute()
}
