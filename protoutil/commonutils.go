/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package protoutil

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/golang/protobuf/proto"
	cb "github.com/hyperledger/fabric-protos-go/common"
	mb "github.com/hyperledger/fabric-protos-go/msp"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// NonceSize is the default NonceSize
const NonceSize = 24

// MarshalOrPanic serializes a protobuf message and panics if this
// operation fails
func MarshalOrPanic(pb proto.Message) []byte {
	data, err := MarshalDeterministic(pb)
	if err != nil {
		panic(err)
	}
	return data
}

// MarshalDeterministic serializes a protobuf message with map entries sorted
// by key, so that equal messages always produce equal bytes.
func MarshalDeterministic(pb proto.Message) ([]byte, error) {
	buf := proto.NewBuffer(nil)
	buf.SetDeterministic(true)
	if err := buf.Marshal(pb); err != nil {
		return nil, errors.Wrapf(err, "error marshaling %T", pb)
	}
	return buf.Bytes(), nil
}

// CreateNonce generates a nonce using the crypto/rand package
func CreateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "error generating random bytes")
	}
	return nonce, nil
}

// ComputeTxID computes TxID as the Hash computed
// over the concatenation of nonce and creator.
func ComputeTxID(nonce, creator []byte) string {
	hasher := sha256.New()
	hasher.Write(nonce)
	hasher.Write(creator)
	return hex.EncodeToString(hasher.Sum(nil))
}

// MakeChannelHeader creates a ChannelHeader. A zero epoch and a nil timestamp
// produce a header whose bytes depend only on the header type and channel.
func MakeChannelHeader(headerType cb.HeaderType, version int32, channelID string, epoch uint64) *cb.ChannelHeader {
	return &cb.ChannelHeader{
		Type:      int32(headerType),
		Version:   version,
		ChannelId: channelID,
		Epoch:     epoch,
	}
}

// MakeSignatureHeader creates a SignatureHeader.
func MakeSignatureHeader(serializedCreatorCertChain []byte, nonce []byte) *cb.SignatureHeader {
	return &cb.SignatureHeader{
		Creator: serializedCreatorCertChain,
		Nonce:   nonce,
	}
}

// MakePayloadHeader creates a Payload Header.
func MakePayloadHeader(ch *cb.ChannelHeader, sh *cb.SignatureHeader) (*cb.Header, error) {
	chBytes, err := MarshalDeterministic(ch)
	if err != nil {
		return nil, err
	}
	hdr := &cb.Header{ChannelHeader: chBytes}
	if sh != nil {
		shBytes, err := MarshalDeterministic(sh)
		if err != nil {
			return nil, err
		}
		hdr.SignatureHeader = shBytes
	}
	return hdr, nil
}

// stampChannelHeader sets the timestamp and transaction id on a header that
// is going to be signed and submitted.
func stampChannelHeader(ch *cb.ChannelHeader, sh *cb.SignatureHeader) {
	ch.Timestamp = timestamppb.Now()
	ch.TxId = ComputeTxID(sh.Nonce, sh.Creator)
}

// UnmarshalSerializedIdentity unmarshals bytes to a SerializedIdentity
func UnmarshalSerializedIdentity(bytes []byte) (*mb.SerializedIdentity, error) {
	sid := &mb.SerializedIdentity{}
	err := proto.Unmarshal(bytes, sid)
	return sid, errors.Wrap(err, "error unmarshaling SerializedIdentity")
}

// UnmarshalSignatureHeader unmarshals bytes to a SignatureHeader
func UnmarshalSignatureHeader(bytes []byte) (*cb.SignatureHeader, error) {
	sh := &cb.SignatureHeader{}
	err := proto.Unmarshal(bytes, sh)
	return sh, errors.Wrap(err, "error unmarshaling SignatureHeader")
}

// UnmarshalChannelHeader unmarshals bytes to a ChannelHeader
func UnmarshalChannelHeader(bytes []byte) (*cb.ChannelHeader, error) {
	chdr := &cb.ChannelHeader{}
	err := proto.Unmarshal(bytes, chdr)
	return chdr, errors.Wrap(err, "error unmarshaling ChannelHeader")
}

// SignerMSPID returns the MSP ID of the creator recorded in a marshaled SignatureHeader
func SignerMSPID(signatureHeader []byte) (string, error) {
	sh, err := UnmarshalSignatureHeader(signatureHeader)
	if err != nil {
		return "", err
	}
	sid, err := UnmarshalSerializedIdentity(sh.Creator)
	if err != nil {
		return "", errors.WithMessage(err, "invalid creator in signature header")
	}
	return sid.Mspid, nil
}
