/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protoutil

import (
	"github.com/golang/protobuf/proto"
	cb "github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

// NewConfigUpdateEnvelope wraps a marshaled ConfigUpdate into an unsigned
// CONFIG_UPDATE envelope carrying the given config signatures. The channel
// header only carries the type and channel ID.
func NewConfigUpdateEnvelope(channelID string, configUpdate []byte, signatures ...*cb.ConfigSignature) (*cb.Envelope, error) {
	return EnvelopeForConfigUpdateEnvelope(channelID, &cb.ConfigUpdateEnvelope{
		ConfigUpdate: configUpdate,
		Signatures:   signatures,
	})
}

// EnvelopeForConfigUpdateEnvelope wraps an existing ConfigUpdateEnvelope into
// an unsigned CONFIG_UPDATE envelope.
func EnvelopeForConfigUpdateEnvelope(channelID string, cue *cb.ConfigUpdateEnvelope) (*cb.Envelope, error) {
	data, err := MarshalDeterministic(cue)
	if err != nil {
		return nil, err
	}
	header, err := MakePayloadHeader(MakeChannelHeader(cb.HeaderType_CONFIG_UPDATE, 0, channelID, 0), nil)
	if err != nil {
		return nil, err
	}
	payload, err := MarshalDeterministic(&cb.Payload{Header: header, Data: data})
	if err != nil {
		return nil, err
	}
	return &cb.Envelope{Payload: payload}, nil
}

// UnmarshalConfigUpdateEnvelope unmarshals bytes to a ConfigUpdateEnvelope
func UnmarshalConfigUpdateEnvelope(data []byte) (*cb.ConfigUpdateEnvelope, error) {
	configUpdateEnvelope := &cb.ConfigUpdateEnvelope{}
	err := proto.Unmarshal(data, configUpdateEnvelope)
	return configUpdateEnvelope, errors.Wrap(err, "error unmarshaling ConfigUpdateEnvelope")
}

// UnmarshalConfigUpdate unmarshals bytes to a ConfigUpdate
func UnmarshalConfigUpdate(data []byte) (*cb.ConfigUpdate, error) {
	configUpdate := &cb.ConfigUpdate{}
	err := proto.Unmarshal(data, configUpdate)
	return configUpdate, errors.Wrap(err, "error unmarshaling ConfigUpdate")
}

// ConfigUpdateEnvelopeFromEnvelope extracts the ConfigUpdateEnvelope and the
// channel ID carried by a CONFIG_UPDATE envelope.
func ConfigUpdateEnvelopeFromEnvelope(env *cb.Envelope) (*cb.ConfigUpdateEnvelope, string, error) {
	payload, err := UnmarshalPayload(env.Payload)
	if err != nil {
		return nil, "", err
	}
	if payload.Header == nil {
		return nil, "", errors.New("bad header")
	}
	ch, err := UnmarshalChannelHeader(payload.Header.ChannelHeader)
	if err != nil {
		return nil, "", err
	}
	if ch.Type != int32(cb.HeaderType_CONFIG_UPDATE) {
		return nil, "", errors.Errorf("expected %s envelope, got header type %d", cb.HeaderType_CONFIG_UPDATE, ch.Type)
	}
	cue, err := UnmarshalConfigUpdateEnvelope(payload.Data)
	if err != nil {
		return nil, "", err
	}
	return cue, ch.ChannelId, nil
}
