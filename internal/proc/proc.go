// Package proc is a thin facade over subprocess invocation: run a program to
// completion and capture its standard output. Preflight probes (debugger
// version, cmake generator support) are the only consumers.
package proc

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner abstracts external process invocation so probes can be stubbed
// in tests.
type Runner interface {
	// Output runs the named program to completion and returns its captured
	// standard output. A non-zero exit status is reported as an error.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// Exec is the real Runner backed by os/exec.
type Exec struct{}

// Output implements Runner.
func (Exec) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", name, err)
	}
	return string(out), nil
}

// FirstLine runs the program via r and returns the first line of its
// standard output with trailing whitespace removed. Empty output is an error:
// probes that key off the first line need something to key off.
func FirstLine(ctx context.Context, r Runner, name string, args ...string) (string, error) {
	out, err := r.Output(ctx, name, args...)
	if err != nil {
		return "", err
	}

	line, _, _ := strings.Cut(out, "\n")
	line = strings.TrimRight(line, "\r\n \t")
	if line == "" {
		return "", fmt.Errorf("%s produced no output", name)
	}
	return line, nil
}
