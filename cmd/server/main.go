package main

import "kwclassify/internal/cli"

func main() {
	cli.Execute()
}
