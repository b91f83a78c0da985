/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package update computes the configuration update between two channel
// configurations.
package update

import (
	"context"
	"os"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-config/configtx"
	cb "github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

//go:generate counterfeiter -o mock/computer.go --fake-name Computer . Computer

// ErrNoDifferences is returned when the original and updated configurations
// are the same.
var ErrNoDifferences = errors.New("no differences detected between original and updated config")

// Computer computes the marshaled ConfigUpdate that turns the configuration
// stored at originalPath into the one stored at updatedPath.
type Computer interface {
	Compute(ctx context.Context, channelID, originalPath, updatedPath string) ([]byte, error)
}

// InProcess computes updates without any external tool.
type InProcess struct{}

// Compute implements Computer.
func (InProcess) Compute(ctx context.Context, channelID, originalPath, updatedPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	original, err := readConfig(originalPath)
	if err != nil {
		return nil, err
	}
	updated, err := readConfig(updatedPath)
	if err != nil {
		return nil, err
	}
	return Compute(channelID, original, updated)
}

// Compute returns the marshaled ConfigUpdate between two configurations.
func Compute(channelID string, original, updated *cb.Config) ([]byte, error) {
	if original.ChannelGroup == nil {
		return nil, errors.New("no channel group included for original config")
	}
	if updated.ChannelGroup == nil {
		return nil, errors.New("no channel group included for updated config")
	}

	c := configtx.New(original)
	target := c.UpdatedConfig()
	target.Sequence = updated.Sequence
	target.ChannelGroup = proto.Clone(updated.ChannelGroup).(*cb.ConfigGroup)

	marshaled, err := c.ComputeMarshaledUpdate(channelID)
	if err != nil {
		if IsNoDifferences(err) {
			return nil, ErrNoDifferences
		}
		return nil, errors.WithMessage(err, "failed to compute update")
	}
	return marshaled, nil
}

// IsNoDifferences reports whether err signals identical configurations.
func IsNoDifferences(err error) bool {
	if err == nil {
		return false
	}
	if errors.Cause(err) == ErrNoDifferences {
		return true
	}
	return strings.Contains(err.Error(), "no differences detected")
}

func readConfig(path string) (*cb.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read config %s", path)
	}
	config := &cb.Config{}
	if err := proto.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "could not unmarshal config %s", path)
	}
	return config, nil
}
