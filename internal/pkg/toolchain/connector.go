/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package toolchain

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hyperledger/fabric-channelcfg/internal/fileutil"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer"
	"github.com/pkg/errors"
)

// PeerConnector reaches the ordering service through `peer channel fetch`
// and `peer channel update`. Unlike the gRPC connector it can sign with
// keys held by an HSM.
type PeerConnector struct {
	Runner  Runner
	Binary  string
	TempDir string
}

// Connect prepares a connection to the first endpoint. No network traffic
// happens until the connection is used.
func (p *PeerConnector) Connect(ctx context.Context, opts orderer.Options) (orderer.Connection, error) {
	if len(opts.Endpoints) == 0 {
		return nil, errors.New("no ordering service endpoints supplied")
	}
	if opts.Credential == nil {
		return nil, errors.New("no credential supplied")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	binary := p.Binary
	if binary == "" {
		binary = "peer"
	}
	endpoint := opts.Endpoints[0]
	if len(opts.Endpoints) > 1 {
		logger.Debugf("Using ordering service node %s, %d other nodes are not used by the peer CLI", endpoint.Address, len(opts.Endpoints)-1)
	}

	conn := &peerConnection{
		runner:    p.Runner,
		binary:    binary,
		address:   endpoint.Address,
		env:       NewSignerEnv(opts.Credential).Environ(),
		timeShift: opts.TLSHandshakeTimeShift,
	}
	if len(endpoint.RootCerts) > 0 {
		dir, err := os.MkdirTemp(p.TempDir, "orderer-tls-")
		if err != nil {
			return nil, errors.Wrap(err, "failed to create temporary directory")
		}
		conn.tempDir = dir
		conn.caFile = filepath.Join(dir, "ca.pem")
		if err := fileutil.WriteFileAtomic(conn.caFile, bytes.Join(endpoint.RootCerts, []byte("\n")), 0o600); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return conn, nil
}

type peerConnection struct {
	runner    Runner
	binary    string
	address   string
	env       []string
	caFile    string
	tempDir   string
	timeShift time.Duration
}

func (c *peerConnection) ordererArgs(channelID string) []string {
	args := []string{"-c", channelID, "-o", c.address}
	if c.caFile != "" {
		args = append(args, "--tls", "--cafile", c.caFile)
	}
	if c.timeShift > 0 {
		args = append(args, "--tlsHandshakeTimeShift", c.timeShift.String())
	}
	return args
}

func (c *peerConnection) Fetch(ctx context.Context, channelID, target, dest string) error {
	switch target {
	case "config", "newest", "oldest":
	default:
		if _, err := strconv.ParseUint(target, 10, 64); err != nil {
			return errors.Errorf("fetch target illegal: %s", target)
		}
	}
	args := append([]string{"channel", "fetch", target, dest}, c.ordererArgs(channelID)...)
	_, err := c.runner.Run(ctx, Command{Path: c.binary, Args: args, Env: c.env})
	return errors.WithMessagef(err, "failed to fetch %s block of channel %s from %s", target, channelID, c.address)
}

func (c *peerConnection) Update(ctx context.Context, channelID, path string) error {
	args := append([]string{"channel", "update", "-f", path}, c.ordererArgs(channelID)...)
	_, err := c.runner.Run(ctx, Command{Path: c.binary, Args: args, Env: c.env})
	return errors.WithMessagef(err, "failed to update channel %s", channelID)
}

func (c *peerConnection) Close() error {
	if c.tempDir == "" {
		return nil
	}
	dir := c.tempDir
	c.tempDir = ""
	return errors.Wrapf(os.RemoveAll(dir), "failed to remove %s", dir)
}
