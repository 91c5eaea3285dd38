package main

import (
	"os"

	"github.com/harun/ghprofile/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
