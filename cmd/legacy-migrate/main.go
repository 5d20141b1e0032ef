package main

import (
	"os"

	"github.com/pageza/recipebox/backend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
