package main

import "github.com/forPelevin/vidlyze/internal/cli"

func main() {
	cli.Main()
}
