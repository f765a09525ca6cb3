package main

import "github.com/mcoot/passcode-go/internal/cli"

func main() {
	cli.Execute()
}
