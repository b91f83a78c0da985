/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package configbuilder

import (
	cb "github.com/hyperledger/fabric-protos-go/common"
)

// DefaultConsortium is the consortium a new channel is created from unless
// another one is named.
const DefaultConsortium = "SampleConsortium"

// DefaultApplicationCapability is the application capability of a new
// channel unless another one is named.
const DefaultApplicationCapability = "V1_4_2"

// Capabilities holds the capability level of each scope. An empty level
// leaves the scope untouched, except for the application scope which falls
// back to DefaultApplicationCapability.
type Capabilities struct {
	Application string `mapstructure:"application"`
	Channel     string `mapstructure:"channel"`
	Orderer     string `mapstructure:"orderer"`
}

// BatchSize holds the block cutting limits of the ordering service. Zero
// fields are left out.
type BatchSize struct {
	MaxMessageCount   uint32 `mapstructure:"max_message_count"`
	AbsoluteMaxBytes  uint32 `mapstructure:"absolute_max_bytes"`
	PreferredMaxBytes uint32 `mapstructure:"preferred_max_bytes"`
}

// Node is an ordering service node that takes part in consensus.
type Node struct {
	Name          string
	APIURL        string
	TLSCert       []byte
	ClientTLSCert []byte
	ServerTLSCert []byte
}

type settings struct {
	consortium    string
	organizations []string
	policies      map[string]*cb.Policy
	acls          map[string]string
	capabilities  Capabilities
	batchSize     *BatchSize
	batchTimeout  string
	consenters    []Node
	hasConsenters bool
}

// Option configures the update produced by Build.
type Option func(*settings)

// WithConsortium names the consortium the channel is created from.
func WithConsortium(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.consortium = name
		}
	}
}

// WithOrganizations adds the application organizations of the channel.
func WithOrganizations(mspIDs ...string) Option {
	return func(s *settings) {
		s.organizations = append(s.organizations, mspIDs...)
	}
}

// WithPolicies sets the application policies of the channel.
func WithPolicies(policies map[string]*cb.Policy) Option {
	return func(s *settings) {
		if s.policies == nil {
			s.policies = map[string]*cb.Policy{}
		}
		for name, p := range policies {
			s.policies[name] = p
		}
	}
}

// WithACLs maps resource names to policy references.
func WithACLs(acls map[string]string) Option {
	return func(s *settings) {
		if s.acls == nil {
			s.acls = map[string]string{}
		}
		for name, ref := range acls {
			s.acls[name] = ref
		}
	}
}

// WithCapabilities sets the capability levels.
func WithCapabilities(c Capabilities) Option {
	return func(s *settings) {
		s.capabilities = c
	}
}

// WithBatchSize sets the block cutting limits.
func WithBatchSize(b BatchSize) Option {
	return func(s *settings) {
		s.batchSize = &b
	}
}

// WithBatchTimeout sets the block cutting timeout, e.g. "500ms" or "2s".
func WithBatchTimeout(timeout string) Option {
	return func(s *settings) {
		s.batchTimeout = timeout
	}
}

// WithConsenters replaces the consenter set and the orderer addresses with
// the given nodes. Node order is kept for the consenter set.
func WithConsenters(nodes []Node) Option {
	return func(s *settings) {
		s.consenters = append([]Node{}, nodes...)
		s.hasConsenters = true
	}
}
