/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identity

import (
	"encoding/base64"
	"encoding/json"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Enrolled is an identity enrolled with a certificate authority, in the
// format exported by the operations console. Certificates and keys are
// PEM documents; the exported file carries them base64 encoded.
type Enrolled struct {
	Name       string `json:"name" mapstructure:"name"`
	Cert       []byte `json:"cert" mapstructure:"cert"`
	PrivateKey []byte `json:"private_key" mapstructure:"private_key"`
	CA         []byte `json:"ca,omitempty" mapstructure:"ca"`
}

type enrolledDocument struct {
	Name       string `json:"name" mapstructure:"name"`
	Cert       string `json:"cert" mapstructure:"cert"`
	PrivateKey string `json:"private_key" mapstructure:"private_key"`
	CA         string `json:"ca" mapstructure:"ca"`
}

// LoadEnrolled reads an exported identity from a JSON file.
func LoadEnrolled(path string) (*Enrolled, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read identity file %s", path)
	}
	doc := &enrolledDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse identity file %s", path)
	}
	return doc.decode()
}

// ResolveEnrolled accepts either the path of an exported identity file or an
// inline identity document, as found in a parameters file.
func ResolveEnrolled(ref interface{}) (*Enrolled, error) {
	switch r := ref.(type) {
	case nil:
		return nil, errors.New("identity not specified")
	case string:
		return LoadEnrolled(r)
	case *Enrolled:
		return r, nil
	default:
		doc := &enrolledDocument{}
		if err := mapstructure.Decode(r, doc); err != nil {
			return nil, errors.Wrap(err, "invalid inline identity")
		}
		return doc.decode()
	}
}

func (d *enrolledDocument) decode() (*Enrolled, error) {
	if d.Cert == "" {
		return nil, errors.Errorf("identity %q has no certificate", d.Name)
	}
	e := &Enrolled{Name: d.Name}
	var err error
	if e.Cert, err = decodePEM("cert", d.Cert); err != nil {
		return nil, err
	}
	if e.PrivateKey, err = decodePEM("private_key", d.PrivateKey); err != nil {
		return nil, err
	}
	if e.CA, err = decodePEM("ca", d.CA); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePEM(field, value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	pem, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, errors.Wrapf(err, "identity field %s is not base64 encoded", field)
	}
	return pem, nil
}
