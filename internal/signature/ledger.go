/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signature tracks the organizations that signed a pending channel
// configuration update.
package signature

import (
	"context"
	"os"

	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity"
	"github.com/hyperledger/fabric-channelcfg/protoutil"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	cb "github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("channelcfg.signature")

//go:generate counterfeiter -o mock/signer.go --fake-name Signer . Signer

// Signer appends exactly one signature, on behalf of the credential's
// organization, to the envelope stored at envelopePath.
type Signer interface {
	Sign(ctx context.Context, envelopePath string, cred *identity.Credential) error
}

// Ledger is the view of the signatures carried by a CONFIG_UPDATE envelope
// persisted on disk.
type Ledger struct {
	path      string
	channelID string
	signers   []string
}

// Load reads the envelope at path.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read envelope %s", path)
	}
	env, err := protoutil.UnmarshalEnvelope(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid envelope %s", path)
	}
	cue, channelID, err := protoutil.ConfigUpdateEnvelopeFromEnvelope(env)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid envelope %s", path)
	}
	signers, err := signerMSPIDs(cue)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid envelope %s", path)
	}
	return &Ledger{
		path:      path,
		channelID: channelID,
		signers:   signers,
	}, nil
}

// Path returns the location of the envelope.
func (l *Ledger) Path() string {
	return l.path
}

// ChannelID returns the channel the update targets.
func (l *Ledger) ChannelID() string {
	return l.channelID
}

// Signers returns the MSP IDs of the signers in envelope order.
func (l *Ledger) Signers() []string {
	return append([]string(nil), l.signers...)
}

// Signed reports whether the organization has already signed.
func (l *Ledger) Signed(mspID string) bool {
	for _, s := range l.signers {
		if s == mspID {
			return true
		}
	}
	return false
}

// Missing returns the organizations in required that have not signed yet.
// The update is ready for submission when the result is empty.
func (l *Ledger) Missing(required []string) []string {
	var missing []string
	for _, mspID := range required {
		if !l.Signed(mspID) {
			missing = append(missing, mspID)
		}
	}
	return missing
}

// SignAs adds the signature of cred's organization through signer unless it
// is already present. It reports whether the envelope was modified.
func (l *Ledger) SignAs(ctx context.Context, signer Signer, cred *identity.Credential) (bool, error) {
	if cred == nil {
		return false, errors.New("no credential supplied")
	}
	if l.Signed(cred.MSPID) {
		logger.Debugf("Envelope %s is already signed by %s", l.path, cred.MSPID)
		return false, nil
	}

	if err := signer.Sign(ctx, l.path, cred); err != nil {
		return false, err
	}

	reloaded, err := Load(l.path)
	if err != nil {
		return false, err
	}
	if !reloaded.Signed(cred.MSPID) {
		return false, errors.Errorf("signature of %s was not added to %s", cred.MSPID, l.path)
	}
	*l = *reloaded
	logger.Infof("Signed %s as %s", l.path, cred.MSPID)
	return true, nil
}

// Append adds sig to the CONFIG_UPDATE envelope unless the envelope already
// carries a signature from the same MSP. The outer envelope signature is
// dropped when the payload changes.
func Append(env *cb.Envelope, sig *cb.ConfigSignature) (*cb.Envelope, bool, error) {
	mspID, err := protoutil.SignerMSPID(sig.SignatureHeader)
	if err != nil {
		return nil, false, errors.WithMessage(err, "invalid signature")
	}

	payload, err := protoutil.UnmarshalPayload(env.Payload)
	if err != nil {
		return nil, false, err
	}
	cue, _, err := protoutil.ConfigUpdateEnvelopeFromEnvelope(env)
	if err != nil {
		return nil, false, err
	}
	signers, err := signerMSPIDs(cue)
	if err != nil {
		return nil, false, err
	}
	for _, s := range signers {
		if s == mspID {
			return env, false, nil
		}
	}

	cue.Signatures = append(cue.Signatures, sig)
	if payload.Data, err = protoutil.MarshalDeterministic(cue); err != nil {
		return nil, false, err
	}
	data, err := protoutil.MarshalDeterministic(payload)
	if err != nil {
		return nil, false, err
	}
	return &cb.Envelope{Payload: data}, true, nil
}

func signerMSPIDs(cue *cb.ConfigUpdateEnvelope) ([]string, error) {
	signers := make([]string, 0, len(cue.Signatures))
	for i, sig := range cue.Signatures {
		mspID, err := protoutil.SignerMSPID(sig.SignatureHeader)
		if err != nil {
			return nil, errors.WithMessagef(err, "signature %d", i)
		}
		signers = append(signers, mspID)
	}
	return signers, nil
}
