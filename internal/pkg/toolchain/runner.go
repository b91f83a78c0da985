/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package toolchain runs the Fabric command line tools.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("channelcfg.toolchain")

// waitDelay bounds how long output is collected after a cancelled command
// has been killed.
const waitDelay = 2 * time.Second

//go:generate counterfeiter -o mock/runner.go --fake-name Runner . Runner

// Command is a command line to execute. Env is the complete environment of
// the process; nothing is inherited from the caller.
type Command struct {
	Path string
	Args []string
	Env  []string
	Dir  string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result holds the captured output of a command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExitError is returned when a command exits with a non-zero status.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("'%s' failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// ExecRunner runs commands as child processes. BaseEnv is prepended to the
// environment of every command, typically to carry PATH.
type ExecRunner struct {
	BaseEnv []string
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Env = append(append([]string{}, r.BaseEnv...), c.Env...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	logger.Debugf("Running '%s'", c)
	err := cmd.Run()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, errors.Wrapf(ctxErr, "'%s' did not complete", c)
	}
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return res, &ExitError{
				Command:  c.String(),
				ExitCode: ee.ExitCode(),
				Stderr:   strings.TrimRight(stderr.String(), "\n\r\t "),
			}
		}
		return res, errors.Wrapf(err, "could not run '%s'", c)
	}
	return res, nil
}
