package main

import "github.com/MattJColes/icarus-sub001/cmd"

func main() {
	cmd.Execute()
}
