/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package toolchain

import (
	"context"
	"path/filepath"

	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity"
	"github.com/pkg/errors"
)

// SignerEnv is the environment of a peer CLI process signing on behalf of
// one organization. It is built from a credential and never mutated.
type SignerEnv struct {
	MSPConfigPath string
	LocalMSPID    string
	ConfigPath    string
	HSM           *identity.HSMConfig
}

// NewSignerEnv derives the signer environment of a credential.
func NewSignerEnv(cred *identity.Credential) SignerEnv {
	return SignerEnv{
		MSPConfigPath: cred.MSPDir,
		LocalMSPID:    cred.MSPID,
		ConfigPath:    cred.ConfigDir,
		HSM:           cred.HSM,
	}
}

// Environ renders the environment variables understood by the peer CLI.
func (e SignerEnv) Environ() []string {
	env := []string{
		"CORE_PEER_MSPCONFIGPATH=" + e.MSPConfigPath,
		"CORE_PEER_LOCALMSPID=" + e.LocalMSPID,
		"FABRIC_CFG_PATH=" + e.ConfigPath,
	}
	if e.HSM != nil {
		env = append(env,
			"CORE_PEER_BCCSP_DEFAULT=PKCS11",
			"CORE_PEER_BCCSP_PKCS11_LIBRARY="+e.HSM.Library,
			"CORE_PEER_BCCSP_PKCS11_LABEL="+e.HSM.Label,
			"CORE_PEER_BCCSP_PKCS11_PIN="+e.HSM.Pin,
			"CORE_PEER_BCCSP_PKCS11_HASH=SHA2",
			"CORE_PEER_BCCSP_PKCS11_SECURITY=256",
			"CORE_PEER_BCCSP_PKCS11_FILEKEYSTORE_KEYSTORE="+filepath.Join(e.MSPConfigPath, "keystore"),
		)
	}
	return env
}

// PeerSigner appends signatures to config update envelopes with
// `peer channel signconfigtx`.
type PeerSigner struct {
	Runner Runner
	Binary string
}

// Sign appends the signature of cred to the envelope stored at path.
func (p *PeerSigner) Sign(ctx context.Context, path string, cred *identity.Credential) error {
	if cred == nil {
		return errors.New("no credential supplied")
	}
	binary := p.Binary
	if binary == "" {
		binary = "peer"
	}
	env := NewSignerEnv(cred)
	logger.Debugf("Signing %s as %s using MSP at %s", path, env.LocalMSPID, env.MSPConfigPath)
	_, err := p.Runner.Run(ctx, Command{
		Path: binary,
		Args: []string{"channel", "signconfigtx", "-f", path},
		Env:  env.Environ(),
	})
	return errors.WithMessagef(err, "failed to sign %s as %s", path, env.LocalMSPID)
}
