/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package tlsgen issues throwaway TLS certificates for ordering service
// nodes and their clients.
package tlsgen

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"

	"github.com/pkg/errors"
)

// CertKeyPair is a PEM encoded certificate and its PEM encoded PKCS#8 key.
type CertKeyPair struct {
	Cert    []byte
	Key     []byte
	TLSCert *x509.Certificate

	signer crypto.Signer
}

// TLSCertificate returns the pair in the form used by tls.Config.
func (kp *CertKeyPair) TLSCertificate() (tls.Certificate, error) {
	return tls.X509KeyPair(kp.Cert, kp.Key)
}

// CA is a self-signed certificate authority.
type CA struct {
	root *CertKeyPair
}

type validity struct {
	notBefore, notAfter time.Time
}

func validFor(d time.Duration) validity {
	now := time.Now()
	return validity{notBefore: now.Add(-time.Hour), notAfter: now.Add(d)}
}

// NewCA creates a CA whose certificate is valid from a week ago for ten
// years.
func NewCA() (*CA, error) {
	now := time.Now()
	root, err := issue(nil, validity{now.Add(-7 * 24 * time.Hour), now.Add(10 * 365 * 24 * time.Hour)}, func(t *x509.Certificate) {
		t.IsCA = true
		t.BasicConstraintsValid = true
		t.KeyUsage |= x509.KeyUsageCertSign | x509.KeyUsageCRLSign
		t.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth}
	})
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create CA")
	}
	return &CA{root: root}, nil
}

// CertBytes returns the PEM encoded certificate of the CA.
func (c *CA) CertBytes() []byte {
	return c.root.Cert
}

// NewClientCertKeyPair issues a client TLS certificate.
func (c *CA) NewClientCertKeyPair() (*CertKeyPair, error) {
	return issue(c.root, validFor(365*24*time.Hour), func(t *x509.Certificate) {
		t.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
	})
}

// NewServerCertKeyPair issues a server TLS certificate for hosts, which are
// IP addresses or DNS names.
func (c *CA) NewServerCertKeyPair(hosts ...string) (*CertKeyPair, error) {
	return issue(c.root, validFor(10*365*24*time.Hour), serverTemplate(hosts))
}

// NewExpiredServerCertKeyPair issues a server TLS certificate that was
// valid from two days ago until an hour ago.
func (c *CA) NewExpiredServerCertKeyPair(hosts ...string) (*CertKeyPair, error) {
	now := time.Now()
	return issue(c.root, validity{now.Add(-48 * time.Hour), now.Add(-time.Hour)}, serverTemplate(hosts))
}

func serverTemplate(hosts []string) func(*x509.Certificate) {
	return func(t *x509.Certificate) {
		t.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth}
		for _, host := range hosts {
			if ip := net.ParseIP(host); ip != nil {
				t.IPAddresses = append(t.IPAddresses, ip)
			} else {
				t.DNSNames = append(t.DNSNames, host)
			}
		}
	}
}

// issue creates a key and a certificate signed by parent, or a self-signed
// one when parent is nil.
func issue(parent *CertKeyPair, v validity, customize func(*x509.Certificate)) (*CertKeyPair, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{SerialNumber: serial.String()},
		NotBefore:    v.notBefore,
		NotAfter:     v.notAfter,
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		SubjectKeyId: subjectKeyID(key),
	}
	customize(template)

	issuer, signer := template, crypto.Signer(key)
	if parent != nil {
		issuer, signer = parent.TLSCert, parent.signer
	}
	der, err := x509.CreateCertificate(rand.Reader, template, issuer, &key.PublicKey, signer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create certificate")
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return &CertKeyPair{
		Cert:    pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		Key:     pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
		TLSCert: cert,
		signer:  key,
	}, nil
}

// RFC 7093, Section 2, Method 4
func subjectKeyID(key *ecdsa.PrivateKey) []byte {
	raw := elliptic.Marshal(key.Curve, key.PublicKey.X, key.PublicKey.Y) //nolint:staticcheck
	hash := crypto.SHA256.New()
	hash.Write(raw)
	return hash.Sum(nil)[:20]
}
