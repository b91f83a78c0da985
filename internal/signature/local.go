/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signature

import (
	"context"
	"os"

	"github.com/hyperledger/fabric-channelcfg/internal/fileutil"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity"
	"github.com/hyperledger/fabric-channelcfg/protoutil"
	"github.com/pkg/errors"
)

// LocalSigner signs envelopes in process with the key held in the
// credential's MSP directory.
type LocalSigner struct{}

// Sign adds the credential's config signature to the envelope at path and
// atomically replaces the file.
func (LocalSigner) Sign(ctx context.Context, path string, cred *identity.Credential) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "signing %s did not complete", path)
	}
	if cred == nil {
		return errors.New("no credential supplied")
	}

	si, err := cred.SigningIdentity()
	if err != nil {
		return errors.WithMessagef(err, "failed to load signing identity of %s", cred.MSPID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read envelope %s", path)
	}
	env, err := protoutil.UnmarshalEnvelope(data)
	if err != nil {
		return err
	}
	cue, _, err := protoutil.ConfigUpdateEnvelopeFromEnvelope(env)
	if err != nil {
		return err
	}

	sig, err := si.ConfigSignature(cue.ConfigUpdate)
	if err != nil {
		return err
	}
	signed, changed, err := Append(env, sig)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	out, err := protoutil.MarshalDeterministic(signed)
	if err != nil {
		return err
	}
	return errors.WithMessagef(fileutil.WriteFileAtomic(path, out, 0o644), "failed to write envelope %s", path)
}
