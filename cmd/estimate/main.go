package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/playervalue/internal/estimatecli"
)

func main() {
	cfg := estimatecli.DefaultConfig()
	fs := flag.NewFlagSet("estimate", flag.ContinueOnError)
	estimatecli.Bind(fs, cfg)
	help := fs.Bool("help", false, "Show help")
	fs.Usage = func() { estimatecli.ShowHelp(os.Stderr, fs) }

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if *help {
		estimatecli.ShowHelp(os.Stdout, fs)
		return
	}

	if err := estimatecli.SetupLogging(cfg.Verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := estimatecli.Run(ctx, cfg, os.Stdout); err != nil {
		os.Stderr.WriteString("Estimate failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
