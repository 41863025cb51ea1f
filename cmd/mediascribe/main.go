package main

import (
	"os"

	"mediascribe/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
