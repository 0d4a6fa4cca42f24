package main

import "github.com/mcoot/tactics-progress/internal/cli"

func main() {
	cli.Execute()
}
