/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package orderer

import (
	"context"
	"fmt"
	"os"

	"github.com/hyperledger/fabric-channelcfg/protoutil"
	cb "github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

// Update signs the CONFIG_UPDATE envelope at path with the connection
// identity and broadcasts it to the ordering service.
func (c *grpcConnection) Update(ctx context.Context, channelID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read update %s", path)
	}
	env, err := protoutil.UnmarshalEnvelope(data)
	if err != nil {
		return err
	}
	cue, envChannelID, err := protoutil.ConfigUpdateEnvelopeFromEnvelope(env)
	if err != nil {
		return errors.WithMessagef(err, "invalid update %s", path)
	}
	if envChannelID != channelID {
		return errors.Errorf("update %s is for channel %s, not %s", path, envChannelID, channelID)
	}

	signed, err := protoutil.CreateSignedEnvelope(cb.HeaderType_CONFIG_UPDATE, channelID, c.signer, cue, 0, 0)
	if err != nil {
		return errors.WithMessage(err, "error signing update envelope")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream, err := c.client.Broadcast(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to open broadcast stream")
	}
	if err := stream.Send(signed); err != nil {
		return errors.Wrap(err, "failed to send update")
	}
	resp, err := stream.Recv()
	if err != nil {
		return errors.Wrap(err, "error receiving")
	}
	if err := stream.CloseSend(); err != nil {
		logger.Debugf("Ignoring error closing broadcast stream: %s", err)
	}

	if resp.Status != cb.Status_SUCCESS {
		return &StatusError{
			Status:  resp.Status,
			Message: fmt.Sprintf("update of channel %s failed", channelID),
			Info:    resp.Info,
		}
	}
	logger.Infof("Successfully submitted update of channel %s to %s", channelID, c.address)
	return nil
}

// StatusError is a non-SUCCESS status returned by the ordering service.
type StatusError struct {
	Status  cb.Status
	Message string
	Info    string
}

func (e *StatusError) Error() string {
	if e.Info == "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Status)
	}
	return fmt.Sprintf("%s with status %s: %s", e.Message, e.Status, e.Info)
}

// Temporary reports whether the ordering service asked to be retried later.
func (e *StatusError) Temporary() bool {
	return e.Status == cb.Status_SERVICE_UNAVAILABLE
}
