/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package identity

// coreConfig is the subset of core.yaml the peer CLI reads before it can
// load a local MSP and sign.
type coreConfig struct {
	Peer peerSection `yaml:"peer"`
}

type peerSection struct {
	ID            string       `yaml:"id"`
	LocalMSPID    string       `yaml:"localMspId"`
	MSPConfigPath string       `yaml:"mspConfigPath"`
	BCCSP         bccspSection `yaml:"BCCSP"`
}

type bccspSection struct {
	Default string         `yaml:"Default"`
	SW      *swSection     `yaml:"SW,omitempty"`
	PKCS11  *pkcs11Section `yaml:"PKCS11,omitempty"`
}

type swSection struct {
	Hash         string           `yaml:"Hash"`
	Security     int              `yaml:"Security"`
	FileKeyStore fileKeyStoreOpts `yaml:"FileKeyStore"`
}

type pkcs11Section struct {
	Library      string           `yaml:"Library"`
	Label        string           `yaml:"Label"`
	Pin          string           `yaml:"Pin"`
	Hash         string           `yaml:"Hash"`
	Security     int              `yaml:"Security"`
	FileKeyStore fileKeyStoreOpts `yaml:"FileKeyStore"`
}

type fileKeyStoreOpts struct {
	KeyStore string `yaml:"KeyStore"`
}

func newCoreConfig(c *Credential) *coreConfig {
	conf := &coreConfig{
		Peer: peerSection{
			ID:            "channelcfg",
			LocalMSPID:    c.MSPID,
			MSPConfigPath: c.MSPDir,
		},
	}
	keystore := fileKeyStoreOpts{KeyStore: c.KeystoreDir()}
	if c.HSM != nil {
		conf.Peer.BCCSP = bccspSection{
			Default: "PKCS11",
			PKCS11: &pkcs11Section{
				Library:      c.HSM.Library,
				Label:        c.HSM.Label,
				Pin:          c.HSM.Pin,
				Hash:         "SHA2",
				Security:     256,
				FileKeyStore: keystore,
			},
		}
		return conf
	}
	conf.Peer.BCCSP = bccspSection{
		Default: "SW",
		SW: &swSection{
			Hash:         "SHA2",
			Security:     256,
			FileKeyStore: keystore,
		},
	}
	return conf
}
