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

//go:generate counterfeiter -o fakes/signer_serializer.go --fake-name SignerSerializer . Signer

// Signer is the interface needed to sign a transaction
type Signer interface {
	Sign(msg []byte) ([]byte, error)
	Serialize() ([]byte, error)
}

// CreateSignedEnvelope creates a signed envelope of the desired type, with
// marshaled dataMsg and signs it
func CreateSignedEnvelope(
	txType cb.HeaderType,
	channelID string,
	signer Signer,
	dataMsg proto.Message,
	msgVersion int32,
	epoch uint64,
) (*cb.Envelope, error) {
	payloadChannelHeader := MakeChannelHeader(txType, msgVersion, channelID, epoch)

	var payloadSignatureHeader *cb.SignatureHeader
	if signer != nil {
		creator, err := signer.Serialize()
		if err != nil {
			return nil, errors.WithMessage(err, "error serializing signer")
		}
		nonce, err := CreateNonce()
		if err != nil {
			return nil, err
		}
		payloadSignatureHeader = MakeSignatureHeader(creator, nonce)
		stampChannelHeader(payloadChannelHeader, payloadSignatureHeader)
	}

	data, err := MarshalDeterministic(dataMsg)
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling")
	}

	header, err := MakePayloadHeader(payloadChannelHeader, payloadSignatureHeader)
	if err != nil {
		return nil, err
	}
	paylBytes, err := MarshalDeterministic(&cb.Payload{Header: header, Data: data})
	if err != nil {
		return nil, err
	}

	var sig []byte
	if signer != nil {
		sig, err = signer.Sign(paylBytes)
		if err != nil {
			return nil, err
		}
	}

	return &cb.Envelope{Payload: paylBytes, Signature: sig}, nil
}

// UnmarshalEnvelope unmarshals bytes to an Envelope
func UnmarshalEnvelope(encoded []byte) (*cb.Envelope, error) {
	envelope := &cb.Envelope{}
	err := proto.Unmarshal(encoded, envelope)
	return envelope, errors.Wrap(err, "error unmarshaling Envelope")
}

// UnmarshalPayload unmarshals bytes to a Payload
func UnmarshalPayload(encoded []byte) (*cb.Payload, error) {
	payload := &cb.Payload{}
	err := proto.Unmarshal(encoded, payload)
	return payload, errors.Wrap(err, "error unmarshaling Payload")
}

// ChannelHeader returns the channel header of an envelope
func ChannelHeader(env *cb.Envelope) (*cb.ChannelHeader, error) {
	if env == nil {
		return nil, errors.New("Invalid envelope payload. can't be nil")
	}
	payload, err := UnmarshalPayload(env.Payload)
	if err != nil {
		return nil, err
	}
	if payload.Header == nil {
		return nil, errors.New("header not set")
	}
	return UnmarshalChannelHeader(payload.Header.ChannelHeader)
}
