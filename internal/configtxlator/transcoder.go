/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package configtxlator converts configuration messages between their wire
// form and their deep JSON form.
package configtxlator

import (
	"bytes"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channelcfg/protoutil"
	"github.com/hyperledger/fabric-config/protolator"
	cb "github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

// MessageKind names a configuration message type.
type MessageKind string

const (
	Block        MessageKind = "common.Block"
	Config       MessageKind = "common.Config"
	ConfigUpdate MessageKind = "common.ConfigUpdate"
	Envelope     MessageKind = "common.Envelope"
)

// ParseMessageKind accepts either the short or the fully qualified name of a
// message type.
func ParseMessageKind(name string) (MessageKind, error) {
	switch name {
	case "block", string(Block):
		return Block, nil
	case "config", string(Config):
		return Config, nil
	case "config_update", string(ConfigUpdate):
		return ConfigUpdate, nil
	case "envelope", string(Envelope):
		return Envelope, nil
	}
	return "", errors.Errorf("unknown message type %q", name)
}

// NewMessage returns an empty message of the given kind.
func NewMessage(kind MessageKind) (proto.Message, error) {
	switch kind {
	case Block:
		return &cb.Block{}, nil
	case Config:
		return &cb.Config{}, nil
	case ConfigUpdate:
		return &cb.ConfigUpdate{}, nil
	case Envelope:
		return &cb.Envelope{}, nil
	}
	return nil, errors.Errorf("unknown message type %q", kind)
}

// Decode unmarshals the wire form of a message.
func Decode(kind MessageKind, data []byte) (proto.Message, error) {
	msg, err := NewMessage(kind)
	if err != nil {
		return nil, err
	}
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, errors.Wrapf(err, "error unmarshaling %s", kind)
	}
	return msg, nil
}

// ToJSON converts the wire form of a message to deep JSON, expanding every
// nested opaque field.
func ToJSON(kind MessageKind, data []byte) ([]byte, error) {
	msg, err := Decode(kind, data)
	if err != nil {
		return nil, err
	}
	return MessageToJSON(msg)
}

// MessageToJSON converts a message to deep JSON.
func MessageToJSON(msg proto.Message) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := protolator.DeepMarshalJSON(buf, msg); err != nil {
		return nil, errors.Wrapf(err, "error encoding %T to JSON", msg)
	}
	return buf.Bytes(), nil
}

// FromJSON converts deep JSON to the deterministic wire form of a message.
func FromJSON(kind MessageKind, data []byte) ([]byte, error) {
	msg, err := NewMessage(kind)
	if err != nil {
		return nil, err
	}
	if err := protolator.DeepUnmarshalJSON(bytes.NewReader(data), msg); err != nil {
		return nil, errors.Wrapf(err, "error decoding %s from JSON", kind)
	}
	return protoutil.MarshalDeterministic(msg)
}
