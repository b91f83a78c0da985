/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package update

import (
	"context"
	"os"
	"strings"

	"github.com/hyperledger/fabric-channelcfg/internal/fileutil"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/toolchain"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("channelcfg.configtxlator.update")

// Command computes updates with `configtxlator compute_update`.
type Command struct {
	Runner  toolchain.Runner
	Binary  string
	TempDir string
}

// Compute implements Computer.
func (c *Command) Compute(ctx context.Context, channelID, originalPath, updatedPath string) (result []byte, err error) {
	output, release, err := fileutil.TempFile(c.TempDir, "config_update-*.pb")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := release(); rerr != nil {
			logger.Warnf("Failed to remove temporary file: %s", rerr)
		}
	}()

	binary := c.Binary
	if binary == "" {
		binary = "configtxlator"
	}
	_, err = c.Runner.Run(ctx, toolchain.Command{
		Path: binary,
		Args: []string{
			"compute_update",
			"--channel_id=" + channelID,
			"--original=" + originalPath,
			"--updated=" + updatedPath,
			"--output=" + output,
		},
	})
	if err != nil {
		if ee, ok := err.(*toolchain.ExitError); ok && strings.Contains(ee.Stderr, "no differences detected") {
			return nil, ErrNoDifferences
		}
		return nil, errors.WithMessage(err, "failed to compute update")
	}

	result, err = os.ReadFile(output)
	if err != nil {
		return nil, errors.Wrap(err, "could not read computed update")
	}
	return result, nil
}
