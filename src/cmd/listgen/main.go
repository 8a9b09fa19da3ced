package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ipfeeds/listgen/src/internal/commands"
	"github.com/ipfeeds/listgen/src/internal/log"
)

var (
	version = "dev"
	commit  = "n/a"
	date    = "n/a"
)

func main() {
	ctx := &commands.AppContext{}

	flag.BoolVar(&ctx.Verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&ctx.Quiet, "quiet", false, "Disable logging, print only command reports")
	flag.StringVar(&ctx.Color, "color", "auto", "Colorize tables: auto, yes or no")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Threat-intelligence CIDR list generator\n")
		fmt.Fprintf(os.Stderr, "Version: %s (Commit: %s, Date: %s)\n\n", version, commit, date)
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [arguments]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  generate <config_file> <output_dir>                          Fetch feeds and write CIDR lists\n")
		fmt.Fprintf(os.Stderr, "  verify <lists_dir> <threshold_percent> <allow_deletions>     Compare lists with git HEAD\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if ctx.Verbose {
		log.SetVerbose(true)
	}
	if ctx.Quiet {
		log.DisableLogs()
	}

	cmds := []commands.Runner{
		commands.CreateGenerateCommand(),
		commands.CreateVerifyCommand(),
	}

	args := flag.Args()

	if len(args) < 1 {
		flag.Usage()
		os.Exit(commands.ExitError)
	}

	subcommand := args[0]
	for _, cmd := range cmds {
		if cmd.Name() == subcommand {
			if err := cmd.Init(args[1:], ctx); err != nil {
				reportError("Failed to initialize command: %v", err)
				os.Exit(commands.ExitCode(err))
			}

			if err := cmd.Run(); err != nil {
				reportError("%v", err)
				os.Exit(commands.ExitCode(err))
			}

			os.Exit(commands.ExitOK)
		}
	}

	log.Fatalf("Unknown subcommand: %s", subcommand)
}

// reportError logs err, or prints it to stderr when -quiet turned logging off.
func reportError(format string, err error) {
	if log.IsDisabled() {
		fmt.Fprintf(os.Stderr, format+"\n", err)
		return
	}
	log.Errorf(format, err)
}
