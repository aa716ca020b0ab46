package main

import "github.com/tkmfujise/redscribe-docs/cmd"

func main() {
	cmd.Execute()
}
