package main

import "github.com/tanq16/paraget/cmd"

func main() {
	cmd.Execute()
}
