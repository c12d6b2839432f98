package main

import "github.com/confide-dev/confide/cmd/confidectl/cmd"

func main() {
	cmd.Execute()
}
