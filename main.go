package main

import (
	"os"

	"mcod/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
