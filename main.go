package main

import "github.com/bkarpinos/linkvault/cmd"

func main() {
	cmd.Execute()
}
