// Package main is the entry point for the racecurve static builder.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/racecurve/cmd/racecurve-build/commands"
	"github.com/okian/racecurve/internal/build"
	"github.com/okian/racecurve/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	cli := commands.New(build.NewTool(logger.Named("build")))
	if err := cli.Execute(ctx); err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	return 0
}
