// clothsim runs the cloth simulation without a window.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/drape/internal/config"
	"github.com/Faultbox/drape/internal/logger"
)

var (
	flagSteps    = flag.Int("steps", 600, "Frames to simulate")
	flagDt       = flag.Float64("dt", 1.0/60, "Frame time in seconds")
	flagInterval = flag.Int("interval", 60, "Log stats every N frames (0 = never)")
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	if err := config.ParseArgs(os.Args[2:]); err != nil {
		os.Exit(2)
	}
	args := config.Args()

	var err error
	switch command {
	case "run":
		err = withConfig(cmdRun)
	case "bench":
		err = withConfig(cmdBench)
	case "export":
		err = withConfig(func(cfg *config.Config) error { return cmdExport(cfg, args) })
	case "presets":
		cmdPresets()
	case "config":
		err = cmdConfig(args)
	case "inspect":
		err = cmdInspect(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withConfig loads the configuration and logger before running fn.
func withConfig(fn func(*config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()
	return fn(cfg)
}

func printUsage() {
	fmt.Println(`clothsim - headless cloth simulation

Usage:
  clothsim <command> [flags] [args]

Commands:
  run                     Simulate and log per-interval statistics
  bench                   Time the BVH and linear collision strategies
  export <out.obj>        Simulate, then write the mesh as Wavefront OBJ
  presets                 List material presets
  config [path]           Write the default configuration as YAML
  inspect <file.obj>      Show vertex, face and bounds of an OBJ file

Flags:
  -steps N        Frames to simulate (default 600)
  -dt SECONDS     Frame time (default 1/60)
  -interval N     Log stats every N frames
  -config PATH    Configuration file
  -preset NAME    Material preset
  -collider SHAPE none, cube or sphere
  -strategy NAME  bvh or linear
  -debug          Debug logging

Examples:
  clothsim run -steps 1200 -collider cube
  clothsim bench -columns 40 -rows 40
  clothsim export -orientation horizontal drape.obj`)
}
