/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the channelcfg.yaml configuration and the
// parameters files of individual operations.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/hyperledger/fabric-channelcfg/internal/pkg/console"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var logger = flogging.MustGetLogger("channelcfg.config")

const (
	// EnvPrefix prefixes every environment override, e.g.
	// CHANNELCFG_LOGGING_SPEC for logging.spec.
	EnvPrefix = "CHANNELCFG"
	// CfgPathEnv names the directory holding channelcfg.yaml.
	CfgPathEnv = "CHANNELCFG_CFG_PATH"
	// TimeShiftEnv is consulted when no TLS handshake time shift is
	// configured.
	TimeShiftEnv = "IBP_TLS_HANDSHAKE_TIME_SHIFT"

	configName = "channelcfg"
)

// Tool selections.
const (
	SignerLocal       = "local"
	SignerPeer        = "peer"
	ComputerInProcess = "inprocess"
	ComputerCommand   = "command"
	ConnectorGRPC     = "grpc"
	ConnectorPeer     = "peer"
)

type Config struct {
	Logging               Logging        `mapstructure:"logging"`
	Console               console.Config `mapstructure:"console"`
	Timeout               time.Duration  `mapstructure:"timeout"`
	TempDir               string         `mapstructure:"tempdir"`
	TLSHandshakeTimeShift time.Duration  `mapstructure:"tls_handshake_time_shift"`
	OrganizationsDir      string         `mapstructure:"organizations_dir"`
	Metrics               Metrics        `mapstructure:"metrics"`
	Tools                 Tools          `mapstructure:"tools"`
}

type Logging struct {
	Spec   string `mapstructure:"spec"`
	Format string `mapstructure:"format"`
}

type Metrics struct {
	// Textfile, when set, receives the metrics of the run in the
	// Prometheus text format.
	Textfile string `mapstructure:"textfile"`
}

// Tools selects the implementation of each external collaborator and the
// binaries used by the command based ones.
type Tools struct {
	Peer           string `mapstructure:"peer"`
	Configtxlator  string `mapstructure:"configtxlator"`
	Signer         string `mapstructure:"signer"`
	Computer       string `mapstructure:"computer"`
	Connector      string `mapstructure:"connector"`
	CheckVersions  bool   `mapstructure:"check_versions"`
	MinimumVersion string `mapstructure:"minimum_version"`
}

// ConfigPaths returns the directories searched for channelcfg.yaml.
func ConfigPaths() []string {
	var paths []string
	if p := os.Getenv(CfgPathEnv); p != "" {
		paths = append(paths, p)
	}
	return append(paths, ".", "/etc/hyperledger/channelcfg")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.spec", "info")
	v.SetDefault("logging.format", "")
	v.SetDefault("console.api_endpoint", "")
	v.SetDefault("console.api_authtype", "")
	v.SetDefault("console.api_key", "")
	v.SetDefault("console.api_secret", "")
	v.SetDefault("console.api_token_endpoint", console.DefaultTokenEndpoint)
	v.SetDefault("console.api_timeout", console.DefaultTimeout)
	v.SetDefault("timeout", 5*time.Minute)
	v.SetDefault("tempdir", "")
	v.SetDefault("tls_handshake_time_shift", time.Duration(0))
	v.SetDefault("organizations_dir", "organizations")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("tools.peer", "peer")
	v.SetDefault("tools.configtxlator", "configtxlator")
	v.SetDefault("tools.signer", SignerLocal)
	v.SetDefault("tools.computer", ComputerInProcess)
	v.SetDefault("tools.connector", ConnectorGRPC)
	v.SetDefault("tools.check_versions", false)
	v.SetDefault("tools.minimum_version", "1.4.3")
}

// Load reads channelcfg.yaml from cfgPath, or from ConfigPaths when cfgPath
// is empty, and applies environment overrides. A missing file is not an
// error.
func Load(cfgPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	paths := ConfigPaths()
	if cfgPath != "" {
		paths = []string{cfgPath}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "failed to read configuration")
		}
		logger.Debugf("No %s.yaml found in %s, using defaults", configName, strings.Join(paths, ", "))
	} else {
		logger.Debugf("Using configuration file %s", v.ConfigFileUsed())
	}

	c := &Config{}
	if err := v.Unmarshal(c, viper.DecodeHook(decodeHook())); err != nil {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	if c.TLSHandshakeTimeShift == 0 {
		shift, err := TimeShiftFromEnv()
		if err != nil {
			return nil, err
		}
		c.TLSHandshakeTimeShift = shift
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// TimeShiftFromEnv parses IBP_TLS_HANDSHAKE_TIME_SHIFT. An unset variable
// yields zero.
func TimeShiftFromEnv() (time.Duration, error) {
	raw := os.Getenv(TimeShiftEnv)
	if raw == "" {
		return 0, nil
	}
	shift, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", TimeShiftEnv)
	}
	return shift, nil
}

// Validate checks the tool selections.
func (c *Config) Validate() error {
	choices := []struct {
		key, value string
		allowed    []string
	}{
		{"tools.signer", c.Tools.Signer, []string{SignerLocal, SignerPeer}},
		{"tools.computer", c.Tools.Computer, []string{ComputerInProcess, ComputerCommand}},
		{"tools.connector", c.Tools.Connector, []string{ConnectorGRPC, ConnectorPeer}},
	}
	for _, choice := range choices {
		if !contains(choice.allowed, choice.value) {
			return errors.Errorf("invalid %s %q, must be one of %s", choice.key, choice.value, strings.Join(choice.allowed, ", "))
		}
	}
	if c.Timeout < 0 {
		return errors.Errorf("invalid timeout %s", c.Timeout)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
