package main

import "github.com/rajsexperiments/scanner-final/internal/cli"

func main() {
	cli.Execute()
}
