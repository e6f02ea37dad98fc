package main

import "editor-assets/internal/cli"

func main() {
	cli.Execute()
}
