package main

import (
	"os"

	"github.com/usr-ein/origami/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
