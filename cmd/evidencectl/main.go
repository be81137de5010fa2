package main

import "github.com/evidencekit/evidence/cmd/evidencectl/cmd"

func main() {
	cmd.Execute()
}
