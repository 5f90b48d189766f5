package main

import (
	"os"

	"elms/internal/app/cli"
)

func main() {
	os.Exit(cli.Execute())
}
