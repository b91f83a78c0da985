/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identity

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-config/configtx"
	cb "github.com/hyperledger/fabric-protos-go/common"
	mb "github.com/hyperledger/fabric-protos-go/msp"
	"github.com/pkg/errors"
)

// SigningIdentity signs with an enrolled certificate and private key held in
// memory.
type SigningIdentity struct {
	id      configtx.SigningIdentity
	certPEM []byte
}

// NewSigningIdentity parses the certificate and private key of an enrolled
// identity.
func NewSigningIdentity(e *Enrolled, mspID string) (*SigningIdentity, error) {
	if e == nil {
		return nil, errors.New("no enrolled identity supplied")
	}
	cert, err := parseCertificate(e.Cert)
	if err != nil {
		return nil, err
	}
	key, err := parsePrivateKey(e.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &SigningIdentity{
		id: configtx.SigningIdentity{
			Certificate: cert,
			PrivateKey:  key,
			MSPID:       mspID,
		},
		certPEM: e.Cert,
	}, nil
}

// MSPID returns the MSP the identity belongs to.
func (s *SigningIdentity) MSPID() string {
	return s.id.MSPID
}

// Sign signs the SHA-256 digest of message.
func (s *SigningIdentity) Sign(message []byte) ([]byte, error) {
	return s.id.Sign(rand.Reader, message, nil)
}

// Serialize returns the serialized MSP identity.
func (s *SigningIdentity) Serialize() ([]byte, error) {
	sid, err := proto.Marshal(&mb.SerializedIdentity{Mspid: s.id.MSPID, IdBytes: s.certPEM})
	return sid, errors.Wrap(err, "failed to serialize identity")
}

// ConfigSignature produces a detached signature over a marshaled ConfigUpdate.
func (s *SigningIdentity) ConfigSignature(marshaledUpdate []byte) (*cb.ConfigSignature, error) {
	sig, err := s.id.CreateConfigSignature(marshaledUpdate)
	return sig, errors.Wrap(err, "failed to create config signature")
}

// SigningIdentity loads the signing identity held in the credential's MSP
// directory. Keys held by an HSM cannot be loaded.
func (c *Credential) SigningIdentity() (*SigningIdentity, error) {
	if c.HSM != nil {
		return nil, errors.Errorf("the private key of %s is held by an HSM", c.MSPID)
	}
	cert, err := firstFile(filepath.Join(c.MSPDir, "signcerts"))
	if err != nil {
		return nil, err
	}
	key, err := firstFile(c.KeystoreDir())
	if err != nil {
		return nil, err
	}
	return NewSigningIdentity(&Enrolled{Name: c.MSPID, Cert: cert, PrivateKey: key}, c.MSPID)
}

func firstFile(dir string) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		return content, errors.Wrapf(err, "failed to read %s", entry.Name())
	}
	return nil, errors.Errorf("no files found in %s", dir)
}

func parseCertificate(certPEM []byte) (*x509.Certificate, error) {
	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, errors.New("certificate is not PEM encoded")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	return cert, errors.Wrap(err, "failed to parse certificate")
}

func parsePrivateKey(keyPEM []byte) (crypto.PrivateKey, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, errors.New("private key is not PEM encoded")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	return key, errors.Wrap(err, "failed to parse private key")
}
