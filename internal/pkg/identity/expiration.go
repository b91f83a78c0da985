/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identity

import (
	"crypto/x509"
	"encoding/pem"
	"time"

	"github.com/golang/protobuf/proto"
	mb "github.com/hyperledger/fabric-protos-go/msp"
)

// MessageFunc logs a formatted message.
type MessageFunc func(format string, args ...interface{})

// ExpiresAt returns when the serialized identity expires, or a zero
// time.Time when that cannot be determined.
func ExpiresAt(identityBytes []byte) time.Time {
	sID := &mb.SerializedIdentity{}
	if err := proto.Unmarshal(identityBytes, sID); err != nil {
		return time.Time{}
	}
	return certExpirationTime(sID.IdBytes)
}

// ExpiresAt returns when the enrollment certificate expires, or a zero
// time.Time when that cannot be determined.
func (e *Enrolled) ExpiresAt() time.Time {
	return certExpirationTime(e.Cert)
}

func certExpirationTime(pemBytes []byte) time.Time {
	bl, _ := pem.Decode(pemBytes)
	if bl == nil {
		return time.Time{}
	}
	cert, err := x509.ParseCertificate(bl.Bytes)
	if err != nil {
		return time.Time{}
	}
	return cert.NotAfter
}

// CheckExpiration reports the expiration of the enrollment certificate of
// mspID through info, or through warn when it has expired or expires
// within a week. It returns true when the certificate has expired.
func CheckExpiration(e *Enrolled, mspID string, now time.Time, info, warn MessageFunc) bool {
	expirationTime := e.ExpiresAt()
	if expirationTime.IsZero() {
		return false
	}
	timeLeft := expirationTime.Sub(now)
	oneWeek := 7 * 24 * time.Hour

	if timeLeft < 0 {
		warn("The enrollment certificate of %s expired on %s", mspID, expirationTime)
		return true
	}
	if timeLeft < oneWeek {
		days := timeLeft / (24 * time.Hour)
		hours := (timeLeft - days*24*time.Hour) / time.Hour
		warn("The enrollment certificate of %s expires within %d days and %d hours", mspID, days, hours)
		return false
	}
	info("The enrollment certificate of %s will expire on %s", mspID, expirationTime)
	return false
}
