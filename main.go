package main

import (
	"fmt"
	"os"

	"github.com/acesco/vigia/cmd"
	"github.com/acesco/vigia/internal/buildinfo"
	"github.com/acesco/vigia/internal/conf"
)

// Set at build time via ldflags.
var (
	version   string
	buildDate string
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	build := buildinfo.NewContext(version, buildDate)
	rootCmd := cmd.RootCommand(settings, build.String())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
