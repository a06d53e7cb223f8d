package main

import "yamdb-backend/cmd/dataload/commands"

func main() {
	commands.Execute()
}
