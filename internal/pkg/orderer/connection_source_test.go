/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package orderer_test

import (
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ConnectionSource", func() {
	var (
		cs        *orderer.ConnectionSource
		org1Certs [][]byte
		org2Certs [][]byte
	)

	BeforeEach(func() {
		org1Certs = [][]byte{[]byte("org1-cert1"), []byte("org1-cert2")}
		org2Certs = [][]byte{[]byte("org2-cert")}
		cs = orderer.NewConnectionSource(flogging.MustGetLogger("test"), map[string]*orderer.Endpoint{
			"override-address": {Address: "re-mapped-address", RootCerts: [][]byte{[]byte("override-cert")}},
		})
	})

	It("has no endpoints initially", func() {
		Expect(cs.Endpoints()).To(BeEmpty())
		Expect(cs.ShuffledEndpoints()).To(BeEmpty())
	})

	When("organizations define their own addresses", func() {
		BeforeEach(func() {
			cs.Update([]string{"global-address"}, map[string]orderer.OrdererOrg{
				"org2": {Addresses: []string{"org2-address1"}, RootCerts: org2Certs},
				"org1": {Addresses: []string{"org1-address1", "org1-address2"}, RootCerts: org1Certs},
			})
		})

		It("uses the organization addresses in organization order", func() {
			Expect(cs.Endpoints()).To(Equal([]*orderer.Endpoint{
				{Address: "org1-address1", RootCerts: org1Certs},
				{Address: "org1-address2", RootCerts: org1Certs},
				{Address: "org2-address1", RootCerts: org2Certs},
			}))
		})

		It("shuffles without losing endpoints", func() {
			Expect(cs.ShuffledEndpoints()).To(ConsistOf(cs.Endpoints()))
		})
	})

	When("only global addresses are defined", func() {
		BeforeEach(func() {
			cs.Update([]string{"global-address1", "override-address"}, map[string]orderer.OrdererOrg{
				"org1": {RootCerts: org1Certs},
				"org2": {RootCerts: org2Certs},
			})
		})

		It("verifies them with every organization's certificates and applies overrides", func() {
			var allCerts [][]byte
			allCerts = append(allCerts, org1Certs...)
			allCerts = append(allCerts, org2Certs...)
			Expect(cs.Endpoints()).To(Equal([]*orderer.Endpoint{
				{Address: "global-address1", RootCerts: allCerts},
				{Address: "re-mapped-address", RootCerts: [][]byte{[]byte("override-cert")}},
			}))
		})
	})

	It("replaces the endpoints on every update", func() {
		cs.Update([]string{"a"}, nil)
		cs.Update([]string{"b"}, nil)
		Expect(cs.Endpoints()).To(Equal([]*orderer.Endpoint{{Address: "b"}}))
	})
})
