/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package orderer

import (
	"context"
	"strconv"

	"github.com/hyperledger/fabric-channelcfg/internal/fileutil"
	"github.com/hyperledger/fabric-channelcfg/protoutil"
	cb "github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	"github.com/pkg/errors"
)

var (
	seekNewest = &ab.SeekPosition{Type: &ab.SeekPosition_Newest{Newest: &ab.SeekNewest{}}}
	seekOldest = &ab.SeekPosition{Type: &ab.SeekPosition_Oldest{Oldest: &ab.SeekOldest{}}}
)

func seekSpecified(number uint64) *ab.SeekPosition {
	return &ab.SeekPosition{Type: &ab.SeekPosition_Specified{Specified: &ab.SeekSpecified{Number: number}}}
}

// Fetch retrieves one block and writes its marshaled form to dest.
func (c *grpcConnection) Fetch(ctx context.Context, channelID, target, dest string) error {
	var (
		block *cb.Block
		err   error
	)

	switch target {
	case "oldest":
		block, err = c.getBlock(ctx, channelID, seekOldest)
	case "newest":
		block, err = c.getBlock(ctx, channelID, seekNewest)
	case "config":
		var newest *cb.Block
		newest, err = c.getBlock(ctx, channelID, seekNewest)
		if err != nil {
			break
		}
		var lc uint64
		lc, err = protoutil.GetLastConfigIndexFromBlock(newest)
		if err != nil {
			break
		}
		logger.Infof("Retrieving last config block: %d", lc)
		block, err = c.getBlock(ctx, channelID, seekSpecified(lc))
	default:
		num, perr := strconv.ParseUint(target, 10, 64)
		if perr != nil {
			return errors.Errorf("fetch target illegal: %s", target)
		}
		block, err = c.getBlock(ctx, channelID, seekSpecified(num))
	}
	if err != nil {
		return errors.WithMessagef(err, "failed to fetch %s block of channel %s from %s", target, channelID, c.address)
	}

	b, err := protoutil.MarshalDeterministic(block)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(dest, b, 0o644)
}

func (c *grpcConnection) seekEnvelope(channelID string, position *ab.SeekPosition) (*cb.Envelope, error) {
	seekInfo := &ab.SeekInfo{
		Start:    position,
		Stop:     position,
		Behavior: ab.SeekInfo_BLOCK_UNTIL_READY,
	}
	env, err := protoutil.CreateSignedEnvelope(cb.HeaderType_DELIVER_SEEK_INFO, channelID, c.signer, seekInfo, 0, 0)
	return env, errors.WithMessage(err, "error signing seek envelope")
}

func (c *grpcConnection) getBlock(ctx context.Context, channelID string, position *ab.SeekPosition) (*cb.Block, error) {
	env, err := c.seekEnvelope(channelID, position)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stream, err := c.client.Deliver(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open deliver stream")
	}
	if err := stream.Send(env); err != nil {
		return nil, errors.Wrap(err, "failed to send seek request")
	}
	if err := stream.CloseSend(); err != nil {
		return nil, errors.Wrap(err, "failed to close deliver stream")
	}

	msg, err := stream.Recv()
	if err != nil {
		return nil, errors.Wrap(err, "error receiving")
	}

	switch t := msg.Type.(type) {
	case *ab.DeliverResponse_Status:
		logger.Debugf("Got status: %v", t)
		return nil, &StatusError{Status: t.Status, Message: "can't read the block"}
	case *ab.DeliverResponse_Block:
		if t.Block == nil || t.Block.Header == nil {
			return nil, errors.New("received block has no header")
		}
		logger.Debugf("Received block: %d", t.Block.Header.Number)
		// flush the success status
		if _, err := stream.Recv(); err != nil {
			logger.Debugf("Ignoring error reading the delivery status: %s", err)
		}
		return t.Block, nil
	default:
		return nil, errors.Errorf("response error: unknown type %T", t)
	}
}
