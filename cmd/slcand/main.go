package main

import (
	"os"

	"slcand/cmd/slcand/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
