/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package orderer

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hyperledger/fabric-lib-go/common/flogging"
)

// Endpoint is an ordering service node address and the TLS root
// certificates used to verify it. Endpoints without root certificates are
// dialed without TLS.
type Endpoint struct {
	Address   string
	RootCerts [][]byte
}

// OrdererOrg groups the node addresses of one ordering organization with
// its TLS root certificates.
type OrdererOrg struct {
	Addresses []string
	RootCerts [][]byte
}

// ConnectionSource holds the candidate endpoints of an ordering service.
type ConnectionSource struct {
	mutex        sync.RWMutex
	allEndpoints []*Endpoint
	logger       *flogging.FabricLogger
	overrides    map[string]*Endpoint
}

func NewConnectionSource(logger *flogging.FabricLogger, overrides map[string]*Endpoint) *ConnectionSource {
	return &ConnectionSource{
		logger:    logger,
		overrides: overrides,
	}
}

// Endpoints returns the candidate endpoints in their preferred dial order.
func (cs *ConnectionSource) Endpoints() []*Endpoint {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()
	return append([]*Endpoint(nil), cs.allEndpoints...)
}

// ShuffledEndpoints returns the candidate endpoints in random order.
func (cs *ConnectionSource) ShuffledEndpoints() []*Endpoint {
	endpoints := cs.Endpoints()
	rand.Shuffle(len(endpoints), func(i, j int) {
		endpoints[i], endpoints[j] = endpoints[j], endpoints[i]
	})
	return endpoints
}

// Update replaces the candidate endpoints. Organization specific addresses
// take precedence over global addresses; global addresses are verified with
// the root certificates of every organization. Organizations are visited in
// name order so that the dial order is stable.
func (cs *ConnectionSource) Update(globalAddrs []string, orgs map[string]OrdererOrg) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	cs.logger.Debug("Processing updates for orderer endpoints")

	orgNames := make([]string, 0, len(orgs))
	hasOrgEndpoints := false
	for orgName, org := range orgs {
		orgNames = append(orgNames, orgName)
		if len(org.Addresses) > 0 {
			hasOrgEndpoints = true
		}
	}
	sort.Strings(orgNames)

	if hasOrgEndpoints && len(globalAddrs) > 0 {
		cs.logger.Warning("Config defines both orderer org specific endpoints and global endpoints, global endpoints will be ignored")
	}

	cs.allEndpoints = nil

	var globalRootCerts [][]byte
	for _, orgName := range orgNames {
		org := orgs[orgName]
		var rootCerts [][]byte
		for _, rootCert := range org.RootCerts {
			if hasOrgEndpoints {
				rootCerts = append(rootCerts, rootCert)
			} else {
				globalRootCerts = append(globalRootCerts, rootCert)
			}
		}

		// Note, if !hasOrgEndpoints, this for loop is a no-op
		for _, address := range org.Addresses {
			cs.allEndpoints = append(cs.allEndpoints, cs.endpoint(address, rootCerts))
		}
	}

	if len(cs.allEndpoints) != 0 {
		cs.logger.Debugf("Returning an orderer connection pool source with org specific endpoints only")
		return
	}

	for _, address := range globalAddrs {
		cs.allEndpoints = append(cs.allEndpoints, cs.endpoint(address, globalRootCerts))
	}

	cs.logger.Debugf("Returning an orderer connection pool source with global endpoints only")
}

func (cs *ConnectionSource) endpoint(address string, rootCerts [][]byte) *Endpoint {
	if overrideEndpoint, ok := cs.overrides[address]; ok {
		cs.logger.Debugf("Overriding endpoint %s with %s", address, overrideEndpoint.Address)
		return &Endpoint{
			Address:   overrideEndpoint.Address,
			RootCerts: overrideEndpoint.RootCerts,
		}
	}
	return &Endpoint{
		Address:   address,
		RootCerts: rootCerts,
	}
}
