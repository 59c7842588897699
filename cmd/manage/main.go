package main

import "github.com/ignite/coreapp/internal/cli"

func main() {
	cli.Execute()
}
