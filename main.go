package main

import (
	"os"

	"github.com/tphakala/soundbank/cmd"
	"github.com/tphakala/soundbank/internal/conf"
)

func main() {
	settings := &conf.Settings{}
	if err := cmd.RootCommand(settings).Execute(); err != nil {
		os.Exit(1)
	}
}
