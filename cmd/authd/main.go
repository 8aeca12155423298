package main

import "github.com/goliatone/go-authd/cmd/authd/cmd"

func main() {
	cmd.Execute()
}
