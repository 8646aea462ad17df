package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/idilsaglam/todo/internal/cli"
	"github.com/idilsaglam/todo/internal/config"
	"github.com/idilsaglam/todo/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	cfg, err := config.Load(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		cli.PrintHelp(os.Stdout)
		return 0
	}
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		ui.Hint(os.Stderr, "run `todo help` for usage")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx, cfg, fs.Args(), os.Stdout, os.Stderr)
}
