/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package configtree

import (
	"sort"
	"strings"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channelcfg/protoutil"
	cb "github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

// Update is a configuration update under construction.
type Update struct {
	ChannelID string
	ReadSet   *Group
	WriteSet  *Group
}

// NewUpdate creates an empty update for a channel.
func NewUpdate(channelID string) *Update {
	return &Update{
		ChannelID: channelID,
		ReadSet:   NewGroup(),
		WriteSet:  NewGroup(),
	}
}

// Root returns an editor positioned on the channel group.
func (u *Update) Root() *Editor {
	return &Editor{read: u.ReadSet, write: u.WriteSet}
}

// Validate checks that every group of the write set has its ancestor chain
// in the read set and that no value of the write set skips a version.
func (u *Update) Validate() error {
	if u.ChannelID == "" {
		return errors.New("channel ID is required")
	}
	return validate(nil, u.ReadSet, u.WriteSet)
}

func validate(path []string, read, write *Group) error {
	for _, name := range sortedKeys(write.Groups) {
		childPath := append(append([]string{}, path...), name)
		r, ok := read.Groups[name]
		if !ok {
			return errors.Errorf("group /%s is in the write set but not in the read set", strings.Join(childPath, "/"))
		}
		if err := validate(childPath, r, write.Groups[name]); err != nil {
			return err
		}
	}
	for key, w := range write.Values {
		r, ok := read.Values[key]
		if !ok {
			continue
		}
		if w.Version != r.Version && w.Version != r.Version+1 {
			return errors.Errorf("value %s at /%s moves from version %d to %d", key, strings.Join(path, "/"), r.Version, w.Version)
		}
	}
	return nil
}

// Proto converts the update into a ConfigUpdate.
func (u *Update) Proto() (*cb.ConfigUpdate, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	readSet, err := u.ReadSet.Proto()
	if err != nil {
		return nil, errors.WithMessage(err, "could not convert read set")
	}
	writeSet, err := u.WriteSet.Proto()
	if err != nil {
		return nil, errors.WithMessage(err, "could not convert write set")
	}
	return &cb.ConfigUpdate{
		ChannelId: u.ChannelID,
		ReadSet:   readSet,
		WriteSet:  writeSet,
	}, nil
}

// Envelope wraps the update into an unsigned CONFIG_UPDATE envelope. The
// channel header carries only the channel ID and the header type so that the
// serialized envelope is identical across invocations.
func (u *Update) Envelope() (*cb.Envelope, error) {
	cu, err := u.Proto()
	if err != nil {
		return nil, err
	}
	marshaled, err := Marshal(cu)
	if err != nil {
		return nil, err
	}
	return protoutil.NewConfigUpdateEnvelope(u.ChannelID, marshaled)
}

// Marshal serializes a message with stable map ordering.
func Marshal(msg proto.Message) ([]byte, error) {
	return protoutil.MarshalDeterministic(msg)
}

func sortedKeys(m map[string]*Group) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
