package main

import "github.com/aggiereview/aggiereview/cmd/importer/command"

func main() {
	command.Execute()
}
