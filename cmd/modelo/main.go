// Command modelo probes the local graphics stack, fetches model assets with
// load tracking, and serves the viewer page.
//
// Usage:
//
//	modelo [-v] probe [-json] [-card status.png] [-lang es]
//	modelo [-v] fetch [-o file] [-retries n] [-config modelo.yaml] URL
//	modelo [-v] serve [-config modelo.yaml] [-addr :8080]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/modelo"
	_ "github.com/gogpu/modelo/capability/halprobe"
	_ "github.com/gogpu/modelo/capability/rustprobe"
	"github.com/gogpu/modelo/internal/config"
)

func main() {
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	modelo.SetLogger(logger)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "probe":
		err = runProbe(args[1:])
	case "fetch":
		err = runFetch(args[1:])
	case "serve":
		err = runServe(args[1:], logger)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("modelo: "+args[0]+" failed", "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: modelo [-v] <command> [flags]

commands:
  probe   detect the graphics tier and print it
  fetch   download a model with timeout and retry tracking
  serve   serve the viewer page and API
`)
}

// loadConfig returns the file at path, or the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}
