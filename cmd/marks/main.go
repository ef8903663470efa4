package main

import (
	"os"

	"github.com/nikbrunner/marks/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
