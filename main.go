package main

import (
	"os"

	"n8n-restore/src/cli"
)

func main() {
	os.Exit(cli.Execute())
}
