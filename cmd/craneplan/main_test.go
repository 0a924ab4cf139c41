package main

import (
	"errors"
	"fmt"
	"testing"

	errs "github.com/matzehuels/craneplan/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrCodeInvalidManifest, "bad row"), 2},
		{fmt.Errorf("read: %w", errs.New(errs.ErrCodeFileNotFound, "x")), 2},
		{errs.New(errs.ErrCodeInfeasible, "no balance"), 3},
		{errs.New(errs.ErrCodeInvalidPlan, "tampered"), 3},
		{errors.New("unknown flag"), 1},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
