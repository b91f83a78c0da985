/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package configbuilder produces the configuration update of a channel from
// declarative options.
package configbuilder

import (
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hyperledger/fabric-channelcfg/internal/configtree"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	cb "github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	"github.com/hyperledger/fabric-protos-go/orderer/etcdraft"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/pkg/errors"
)

const (
	// AdminsPolicyName is the mod policy of every element the builder emits,
	// other than the orderer addresses.
	AdminsPolicyName = "Admins"

	// OrdererAdminsPolicy is the absolute path to the orderer admins policy
	OrdererAdminsPolicy = "/Channel/Orderer/Admins"

	// ConsensusTypeEtcdRaft identifies the Raft-based consensus implementation.
	ConsensusTypeEtcdRaft = "etcdraft"

	defaultConsenterPort = 443
)

const (
	applicationGroupKey = "Application"
	ordererGroupKey     = "Orderer"
	consortiumKey       = "Consortium"
	capabilitiesKey     = "Capabilities"
	aclsKey             = "ACLs"
	batchSizeKey        = "BatchSize"
	batchTimeoutKey     = "BatchTimeout"
	consensusTypeKey    = "ConsensusType"
	ordererAddressesKey = "OrdererAddresses"
)

var logger = flogging.MustGetLogger("channelcfg.configbuilder")

// DefaultRaftOptions returns the Raft tuning emitted with a consenter set.
func DefaultRaftOptions() *etcdraft.Options {
	return &etcdraft.Options{
		TickInterval:         "500ms",
		ElectionTick:         10,
		HeartbeatTick:        1,
		MaxInflightBlocks:    5,
		SnapshotIntervalSize: 20971520,
	}
}

// Build assembles the configuration update of a new channel. The update
// always pins the consortium and rewrites the application group; every
// other element is only emitted when its option is supplied.
func Build(channelID string, opts ...Option) (*configtree.Update, error) {
	if channelID == "" {
		return nil, errors.New("channel name is required")
	}
	s := &settings{consortium: DefaultConsortium}
	for _, opt := range opts {
		opt(s)
	}

	logger.Debugf("Building config update for channel %s with %d organizations", channelID, len(s.organizations))

	u := configtree.NewUpdate(channelID)
	root := u.Root()
	root.PinValue(consortiumKey, &cb.Consortium{Name: s.consortium})

	app := root.Group(applicationGroupKey).Replace(1, AdminsPolicyName)
	appCapability := s.capabilities.Application
	if appCapability == "" {
		appCapability = DefaultApplicationCapability
	}
	app.AddValue(capabilitiesKey, AdminsPolicyName, capabilities(appCapability))

	for _, mspID := range s.organizations {
		if mspID == "" {
			return nil, errors.New("organization MSP ID must not be empty")
		}
		app.Group(mspID)
	}

	for name, policy := range s.policies {
		if policy == nil {
			return nil, errors.Errorf("policy %s is not set", name)
		}
		app.SetPolicy(name, AdminsPolicyName, policy)
	}

	if len(s.acls) != 0 {
		acls := &pb.ACLs{Acls: make(map[string]*pb.APIResource, len(s.acls))}
		for name, ref := range s.acls {
			acls.Acls[name] = &pb.APIResource{PolicyRef: ref}
		}
		app.AddValue(aclsKey, AdminsPolicyName, acls)
	}

	if c := s.capabilities.Channel; c != "" {
		root.ModifyValue(capabilitiesKey, AdminsPolicyName, capabilities(c), 0)
	}
	if c := s.capabilities.Orderer; c != "" {
		root.Group(ordererGroupKey).ModifyValue(capabilitiesKey, AdminsPolicyName, capabilities(c), 0)
	}

	if s.batchSize != nil {
		root.Group(ordererGroupKey).ModifyValue(batchSizeKey, AdminsPolicyName, &ab.BatchSize{
			MaxMessageCount:   s.batchSize.MaxMessageCount,
			AbsoluteMaxBytes:  s.batchSize.AbsoluteMaxBytes,
			PreferredMaxBytes: s.batchSize.PreferredMaxBytes,
		}, 0)
	}

	if s.batchTimeout != "" {
		if _, err := time.ParseDuration(s.batchTimeout); err != nil {
			return nil, errors.Wrapf(err, "invalid batch timeout %s", s.batchTimeout)
		}
		root.Group(ordererGroupKey).ModifyValue(batchTimeoutKey, AdminsPolicyName, &ab.BatchTimeout{Timeout: s.batchTimeout}, 0)
	}

	if s.hasConsenters {
		if err := addConsenters(root, s.consenters); err != nil {
			return nil, err
		}
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// addConsenters emits the consensus type and the orderer addresses together.
// Nodes sharing a host and port are projected once, the first one wins.
func addConsenters(root *configtree.Editor, nodes []Node) error {
	if len(nodes) == 0 {
		return errors.New("at least one consenter is required")
	}

	metadata := &etcdraft.ConfigMetadata{Options: DefaultRaftOptions()}
	addresses := map[string]struct{}{}
	for _, node := range nodes {
		host, port, err := hostPort(node.APIURL)
		if err != nil {
			return errors.WithMessagef(err, "invalid ordering service node %s", node.Name)
		}
		address := net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
		if _, ok := addresses[address]; ok {
			continue
		}
		addresses[address] = struct{}{}

		clientCert := node.ClientTLSCert
		if len(clientCert) == 0 {
			clientCert = node.TLSCert
		}
		serverCert := node.ServerTLSCert
		if len(serverCert) == 0 {
			serverCert = node.TLSCert
		}
		metadata.Consenters = append(metadata.Consenters, &etcdraft.Consenter{
			Host:          host,
			Port:          port,
			ClientTlsCert: clientCert,
			ServerTlsCert: serverCert,
		})
	}

	md, err := configtree.Marshal(metadata)
	if err != nil {
		return errors.WithMessage(err, "cannot marshal etcdraft metadata")
	}
	root.Group(ordererGroupKey).ModifyValue(consensusTypeKey, AdminsPolicyName, &ab.ConsensusType{
		Type:     ConsensusTypeEtcdRaft,
		Metadata: md,
	}, 0)

	sorted := make([]string, 0, len(addresses))
	for addr := range addresses {
		sorted = append(sorted, addr)
	}
	sort.Strings(sorted)
	root.ModifyValue(ordererAddressesKey, OrdererAdminsPolicy, &cb.OrdererAddresses{Addresses: sorted}, 0)
	return nil
}

func hostPort(apiURL string) (string, uint32, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", 0, errors.Wrapf(err, "cannot parse API URL %s", apiURL)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", 0, errors.Errorf("API URL %s has no host", apiURL)
	}
	port := uint64(defaultConsenterPort)
	if p := u.Port(); p != "" {
		port, err = strconv.ParseUint(p, 10, 16)
		if err != nil {
			return "", 0, errors.Wrapf(err, "invalid port in API URL %s", apiURL)
		}
	}
	return host, uint32(port), nil
}

func capabilities(name string) *cb.Capabilities {
	return &cb.Capabilities{
		Capabilities: map[string]*cb.Capability{name: {}},
	}
}
