/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/hyperledger/fabric-channelcfg/internal/configbuilder"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/console"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity"
	"github.com/pkg/errors"
)

// DefaultOrganizationsDir holds the MSP directories used by
// sign_update_organizations.
const DefaultOrganizationsDir = "organizations"

// Parameters are the inputs of every operation. Each operation uses a
// subset of them.
type Parameters struct {
	Console console.Config `mapstructure:",squash"`

	Name     string `mapstructure:"name"`
	Path     string `mapstructure:"path"`
	Original string `mapstructure:"original"`
	Updated  string `mapstructure:"updated"`

	// Identity is the path of an exported identity file or the identity
	// itself.
	Identity interface{}         `mapstructure:"identity"`
	MSPID    string              `mapstructure:"msp_id"`
	HSM      *identity.HSMConfig `mapstructure:"hsm"`

	OrderingService       interface{}   `mapstructure:"ordering_service"`
	OrderingServiceNodes  []interface{} `mapstructure:"ordering_service_nodes"`
	TLSHandshakeTimeShift time.Duration `mapstructure:"tls_handshake_time_shift"`

	Organizations    []interface{} `mapstructure:"organizations"`
	OrganizationsDir string        `mapstructure:"organizations_dir"`

	Consortium   string                     `mapstructure:"consortium"`
	Policies     map[string]interface{}     `mapstructure:"policies"`
	ACLs         map[string]string          `mapstructure:"acls"`
	Capabilities configbuilder.Capabilities `mapstructure:"capabilities"`
	Parameters   ChannelParameters          `mapstructure:"parameters"`
}

// ChannelParameters are the block cutting parameters of a new channel.
type ChannelParameters struct {
	BatchSize    *configbuilder.BatchSize `mapstructure:"batch_size"`
	BatchTimeout string                   `mapstructure:"batch_timeout"`
}

var required = map[Operation][]string{
	OperationCreate:                  {"api_endpoint", "api_authtype", "api_key", "organizations", "policies", "name", "path"},
	OperationFetch:                   {"api_endpoint", "api_authtype", "api_key", "identity", "msp_id", "name", "path"},
	OperationComputeUpdate:           {"name", "path", "original", "updated"},
	OperationSignUpdate:              {"identity", "msp_id", "name", "path"},
	OperationSignUpdateOrganizations: {"organizations", "organizations_dir", "name", "path"},
	OperationApplyUpdate:             {"api_endpoint", "api_authtype", "api_key", "identity", "msp_id", "name", "path"},
}

func (p *Parameters) present(name string) bool {
	switch name {
	case "api_endpoint":
		return p.Console.Endpoint != ""
	case "api_authtype":
		return p.Console.AuthType != ""
	case "api_key":
		return p.Console.APIKey != ""
	case "api_secret":
		return p.Console.APISecret != ""
	case "name":
		return p.Name != ""
	case "path":
		return p.Path != ""
	case "original":
		return p.Original != ""
	case "updated":
		return p.Updated != ""
	case "identity":
		return p.Identity != nil
	case "msp_id":
		return p.MSPID != ""
	case "organizations":
		return p.Organizations != nil
	case "organizations_dir":
		return p.OrganizationsDir != ""
	case "policies":
		return p.Policies != nil
	case "ordering_service":
		return p.OrderingService != nil
	case "ordering_service_nodes":
		return p.OrderingServiceNodes != nil
	}
	panic(fmt.Sprintf("unknown parameter %s", name))
}

// Validate checks that every parameter op requires is present and that no
// conflicting parameters are given.
func (p *Parameters) Validate(op Operation) error {
	names, ok := required[op]
	if !ok {
		return errors.Errorf("invalid operation %q", op)
	}
	var missing []string
	for _, name := range names {
		if !p.present(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("operation is %s but all of the following are missing: %s", op, strings.Join(missing, ", "))
	}

	switch p.Console.AuthType {
	case "", console.AuthTypeIBMCloud:
	case console.AuthTypeBasic:
		if !p.present("api_secret") {
			return errors.New("api_authtype is basic but all of the following are missing: api_secret")
		}
	default:
		return errors.Errorf("value of api_authtype must be one of: %s, %s, got: %s", console.AuthTypeIBMCloud, console.AuthTypeBasic, p.Console.AuthType)
	}

	if op == OperationFetch || op == OperationApplyUpdate {
		switch {
		case p.present("ordering_service") && p.present("ordering_service_nodes"):
			return errors.New("parameters are mutually exclusive: ordering_service|ordering_service_nodes")
		case !p.present("ordering_service") && !p.present("ordering_service_nodes"):
			return errors.New("one of the following is required: ordering_service, ordering_service_nodes")
		}
	}

	if op == OperationSignUpdateOrganizations {
		if _, err := p.organizationIDs(); err != nil {
			return err
		}
	}

	return p.HSM.Validate()
}

// organizationIDs returns the MSP IDs listed in organizations, without
// duplicates.
func (p *Parameters) organizationIDs() ([]string, error) {
	seen := map[string]bool{}
	var mspIDs []string
	for _, org := range p.Organizations {
		mspID, ok := org.(string)
		if !ok || mspID == "" {
			return nil, errors.Errorf("organizations must be a list of MSP IDs, got %v", org)
		}
		if seen[mspID] {
			continue
		}
		seen[mspID] = true
		mspIDs = append(mspIDs, mspID)
	}
	return mspIDs, nil
}

func (p *Parameters) withDefaults() *Parameters {
	c := *p
	if c.OrganizationsDir == "" {
		c.OrganizationsDir = DefaultOrganizationsDir
	}
	return &c
}

// logFields describes the parameters for structured debug logs. Secrets
// and key material are left out.
func (p *Parameters) logFields(op Operation) []interface{} {
	fields := []interface{}{
		"operation", op,
		"channel", p.Name,
		"path", p.Path,
	}
	add := func(key string, value interface{}, set bool) {
		if set {
			fields = append(fields, key, value)
		}
	}
	add("api_endpoint", p.Console.Endpoint, p.Console.Endpoint != "")
	add("api_authtype", p.Console.AuthType, p.Console.AuthType != "")
	add("original", p.Original, p.Original != "")
	add("updated", p.Updated, p.Updated != "")
	add("msp_id", p.MSPID, p.MSPID != "")
	add("hsm", p.HSM != nil, p.HSM != nil)
	add("organizations", p.Organizations, p.Organizations != nil)
	add("ordering_service", p.OrderingService, p.OrderingService != nil)
	add("ordering_service_nodes", len(p.OrderingServiceNodes), p.OrderingServiceNodes != nil)
	add("tls_handshake_time_shift", p.TLSHandshakeTimeShift, p.TLSHandshakeTimeShift != 0)
	return fields
}
