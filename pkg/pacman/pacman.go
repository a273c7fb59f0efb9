// Package pacman wraps the external package-manager query tools.
//
// All system access goes through the [Runner] interface so the collection
// pipeline can be exercised against canned output in tests. The exec
// implementation shells out to pacman for enumeration and metadata and to
// pactree for dependency trees; both binaries are probed up front so a
// missing prerequisite aborts the run with guidance instead of failing
// package by package.
package pacman

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pacscope/pacscope/pkg/errors"
)

// Tool binary names.
const (
	pacmanBin  = "pacman"
	pactreeBin = "pactree"
)

// Runner executes one external tool invocation and returns its stdout.
type Runner interface {
	Run(ctx context.Context, bin string, args ...string) (string, error)
}

// execRunner is the production Runner backed by os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.Wrap(errors.ErrCodeToolFailure, err, "%s %s: %s", bin, strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

// System queries the local package database.
type System struct {
	runner Runner
}

// New creates a System backed by the real pacman and pactree binaries.
func New() *System {
	return &System{runner: execRunner{}}
}

// NewWithRunner creates a System with a custom Runner, used in tests.
func NewWithRunner(r Runner) *System {
	return &System{runner: r}
}

// CheckPrerequisites verifies that the required external tools are on
// PATH. It returns a PREREQUISITE_MISSING error naming the absent tool.
func CheckPrerequisites() error {
	for _, bin := range []string{pacmanBin, pactreeBin} {
		if _, err := exec.LookPath(bin); err != nil {
			return errors.New(errors.ErrCodePrerequisiteMissing,
				"%s not found in PATH (install pacman-contrib for pactree)", bin)
		}
	}
	return nil
}

// lines splits tool output into trimmed, non-empty lines.
func lines(out string) []string {
	var result []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}
