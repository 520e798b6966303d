package main

import "docs-server/cmd"

func main() {
	cmd.Execute()
}
