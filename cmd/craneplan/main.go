package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/craneplan/internal/cli"
	errs "github.com/matzehuels/craneplan/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(130) // 128 + SIGINT
	}
	fmt.Fprintln(os.Stderr, "craneplan:", errs.UserMessage(err))
	os.Exit(exitCode(err))
}

// exitCode separates bad input (2) from planning failures (3) and
// everything else (1).
func exitCode(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidManifest, errs.ErrCodeInvalidRequest,
		errs.ErrCodeInvalidConfig, errs.ErrCodeFileNotFound:
		return 2
	case errs.ErrCodeInfeasible, errs.ErrCodeExhausted, errs.ErrCodeInvalidPlan:
		return 3
	default:
		return 1
	}
}
