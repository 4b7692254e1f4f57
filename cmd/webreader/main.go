package main

import (
	"os"

	"github.com/sunnyzhifei/web-reader-ai/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
