/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package toolchain

import (
	"context"
	"os/exec"
	"regexp"

	"github.com/hashicorp/go-version"
	"github.com/pkg/errors"
)

// MinimumFabricVersion is the oldest release of the Fabric tools that can
// be driven.
const MinimumFabricVersion = "1.4.3"

var versionLine = regexp.MustCompile(`(?m)^\s*Version:\s*v?(\S+)\s*$`)

// CheckVersion verifies that binary is installed and reports at least the
// minimum version.
func CheckVersion(ctx context.Context, runner Runner, binary, minimum string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return errors.Errorf("%s binary not found on PATH", binary)
	}
	res, err := runner.Run(ctx, Command{Path: binary, Args: []string{"version"}})
	if err != nil {
		return errors.WithMessagef(err, "could not determine the version of %s", binary)
	}
	return compareVersion(binary, res.Stdout, minimum)
}

func compareVersion(binary string, output []byte, minimum string) error {
	m := versionLine.FindSubmatch(output)
	if m == nil {
		return errors.Errorf("no version reported by %s", binary)
	}
	actual, err := version.NewVersion(string(m[1]))
	if err != nil {
		return errors.Wrapf(err, "invalid version reported by %s", binary)
	}
	required, err := version.NewVersion(minimum)
	if err != nil {
		return errors.Wrapf(err, "invalid minimum version %s", minimum)
	}
	if actual.LessThan(required) {
		return errors.Errorf("%s version %s is older than the required version %s", binary, actual, required)
	}
	logger.Debugf("Found %s version %s", binary, actual)
	return nil
}
