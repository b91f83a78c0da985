/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identity

import (
	"os"
	"path/filepath"

	"github.com/hyperledger/fabric-channelcfg/internal/fileutil"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

var logger = flogging.MustGetLogger("channelcfg.identity")

// HSMConfig holds the PKCS#11 parameters used when the signing key lives in
// a hardware security module.
type HSMConfig struct {
	Library string `json:"pkcs11library" mapstructure:"pkcs11library"`
	Label   string `json:"label" mapstructure:"label"`
	Pin     string `json:"pin" mapstructure:"pin"`
}

// Validate checks that every PKCS#11 parameter is present.
func (h *HSMConfig) Validate() error {
	if h == nil {
		return nil
	}
	switch {
	case h.Library == "":
		return errors.New("hsm: pkcs11library is required")
	case h.Label == "":
		return errors.New("hsm: label is required")
	case h.Pin == "":
		return errors.New("hsm: pin is required")
	}
	return nil
}

// Credential is a scoped MSP context on disk: an MSP directory and a
// configuration directory holding a core.yaml, as expected by the peer CLI.
// Directories created for the credential are removed by Close.
type Credential struct {
	MSPID     string
	MSPDir    string
	ConfigDir string
	HSM       *HSMConfig

	owned []string
}

// Materialize writes the enrolled identity as an MSP directory below tmpRoot
// and creates a configuration directory for it. The caller must Close the
// returned credential.
func Materialize(tmpRoot string, e *Enrolled, mspID string, hsm *HSMConfig) (cred *Credential, err error) {
	if e == nil {
		return nil, errors.New("no enrolled identity supplied")
	}
	if mspID == "" {
		return nil, errors.New("msp id is required")
	}

	cred = &Credential{MSPID: mspID, HSM: hsm}
	defer func() {
		if err != nil {
			if cerr := cred.Close(); cerr != nil {
				logger.Warnf("Failed cleaning up credential for %s: %s", mspID, cerr)
			}
			cred = nil
		}
	}()

	cred.MSPDir, err = cred.tempDir(tmpRoot, "msp-")
	if err != nil {
		return cred, err
	}

	files := map[string][]byte{
		filepath.Join("signcerts", "cert.pem"):  e.Cert,
		filepath.Join("admincerts", "cert.pem"): e.Cert,
	}
	if len(e.CA) != 0 {
		files[filepath.Join("cacerts", "ca.pem")] = e.CA
	}
	if len(e.PrivateKey) != 0 {
		files[filepath.Join("keystore", "key.pem")] = e.PrivateKey
	} else if hsm == nil {
		return cred, errors.Errorf("identity %q has no private key and no HSM is configured", e.Name)
	}
	for name, content := range files {
		if err = writeMSPFile(cred.MSPDir, name, content); err != nil {
			return cred, err
		}
	}
	// keystore must exist even when the key is held by an HSM
	if err = os.MkdirAll(filepath.Join(cred.MSPDir, "keystore"), 0o700); err != nil {
		return cred, errors.Wrap(err, "failed to create keystore")
	}

	err = cred.writeConfig(tmpRoot)
	return cred, err
}

// ForOrganization builds a credential around an existing MSP directory at
// <orgsDir>/<mspID>/msp. Only the configuration directory is temporary.
func ForOrganization(tmpRoot, orgsDir, mspID string, hsm *HSMConfig) (cred *Credential, err error) {
	mspDir := filepath.Join(orgsDir, mspID, "msp")
	exists, err := fileutil.DirExists(mspDir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Errorf("msp directory %s for organization %s does not exist", mspDir, mspID)
	}

	cred = &Credential{MSPID: mspID, MSPDir: mspDir, HSM: hsm}
	if err := cred.writeConfig(tmpRoot); err != nil {
		if cerr := cred.Close(); cerr != nil {
			logger.Warnf("Failed cleaning up credential for %s: %s", mspID, cerr)
		}
		return nil, err
	}
	return cred, nil
}

// KeystoreDir returns the keystore directory of the MSP.
func (c *Credential) KeystoreDir() string {
	return filepath.Join(c.MSPDir, "keystore")
}

// Close removes every directory created for the credential. It is safe to
// call more than once.
func (c *Credential) Close() error {
	if c == nil {
		return nil
	}
	var err error
	for _, dir := range c.owned {
		err = multierr.Append(err, errors.Wrapf(os.RemoveAll(dir), "failed to remove %s", dir))
	}
	c.owned = nil
	return err
}

func (c *Credential) tempDir(root, pattern string) (string, error) {
	dir, err := os.MkdirTemp(root, pattern)
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary directory")
	}
	c.owned = append(c.owned, dir)
	return dir, nil
}

func (c *Credential) writeConfig(tmpRoot string) error {
	dir, err := c.tempDir(tmpRoot, "cfg-")
	if err != nil {
		return err
	}
	c.ConfigDir = dir

	out, err := yaml.Marshal(newCoreConfig(c))
	if err != nil {
		return errors.Wrap(err, "failed to render core.yaml")
	}
	return fileutil.WriteFileAtomic(filepath.Join(dir, "core.yaml"), out, 0o600)
}

func writeMSPFile(mspDir, name string, content []byte) error {
	path := filepath.Join(mspDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	return fileutil.WriteFileAtomic(path, content, 0o600)
}
