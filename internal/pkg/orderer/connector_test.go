/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package orderer_test

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channelcfg/common/crypto/tlsgen"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity/identitytest"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer/orderertest"
	"github.com/hyperledger/fabric-channelcfg/protoutil"
	cb "github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("GRPCConnector", func() {
	var (
		ca        *tlsgen.CA
		server    *orderertest.Server
		signer    *identity.SigningIdentity
		connector *orderer.GRPCConnector
		opts      orderer.Options
		tempDir   string
	)

	BeforeEach(func() {
		var err error
		ca, err = tlsgen.NewCA()
		Expect(err).NotTo(HaveOccurred())
		kp, err := ca.NewServerCertKeyPair("127.0.0.1")
		Expect(err).NotTo(HaveOccurred())
		cert, err := tls.X509KeyPair(kp.Cert, kp.Key)
		Expect(err).NotTo(HaveOccurred())

		server, err = orderertest.NewServer(&cert)
		Expect(err).NotTo(HaveOccurred())

		signer, err = identity.NewSigningIdentity(identitytest.NewEnrolled(GinkgoT(), "Org1 Admin"), "Org1MSP")
		Expect(err).NotTo(HaveOccurred())

		tempDir = GinkgoT().TempDir()
		connector = &orderer.GRPCConnector{}
		opts = orderer.Options{
			Endpoints:   []*orderer.Endpoint{{Address: server.Address(), RootCerts: [][]byte{ca.CertBytes()}}},
			Signer:      signer,
			DialTimeout: time.Second,
		}
	})

	AfterEach(func() {
		server.Stop()
	})

	unusedAddress := func() string {
		lis, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer lis.Close()
		return lis.Addr().String()
	}

	Describe("Connect", func() {
		It("requires endpoints", func() {
			opts.Endpoints = nil
			_, err := connector.Connect(context.Background(), opts)
			Expect(err).To(MatchError("no ordering service endpoints supplied"))
		})

		It("requires a signer", func() {
			opts.Signer = nil
			_, err := connector.Connect(context.Background(), opts)
			Expect(err).To(MatchError("no signer supplied"))
		})

		It("falls through to the next endpoint when one cannot be reached", func() {
			opts.DialTimeout = 200 * time.Millisecond
			opts.Endpoints = append([]*orderer.Endpoint{{Address: unusedAddress()}}, opts.Endpoints...)
			conn, err := connector.Connect(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(conn.Close()).To(Succeed())
		})

		It("fails when no endpoint can be reached", func() {
			opts.DialTimeout = 200 * time.Millisecond
			bad := unusedAddress()
			opts.Endpoints = []*orderer.Endpoint{{Address: bad}}
			_, err := connector.Connect(context.Background(), opts)
			Expect(err).To(MatchError(ContainSubstring("failed to connect to any ordering service node")))
			Expect(err).To(MatchError(ContainSubstring(bad)))
		})

		It("verifies each endpoint against its own root certificates", func() {
			otherCA, err := tlsgen.NewCA()
			Expect(err).NotTo(HaveOccurred())
			opts.Endpoints = []*orderer.Endpoint{
				{Address: server.Address(), RootCerts: [][]byte{otherCA.CertBytes()}},
				{Address: server.Address(), RootCerts: [][]byte{ca.CertBytes()}},
			}
			conn, err := connector.Connect(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(conn.Close()).To(Succeed())

			opts.Endpoints = opts.Endpoints[:1]
			_, err = connector.Connect(context.Background(), opts)
			Expect(err).To(MatchError(ContainSubstring("failed to connect to any ordering service node")))
		})

		It("rejects root certificates that are not PEM", func() {
			opts.Endpoints = []*orderer.Endpoint{{Address: server.Address(), RootCerts: [][]byte{[]byte("not a certificate")}}}
			_, err := connector.Connect(context.Background(), opts)
			Expect(err).To(MatchError(ContainSubstring("invalid TLS root certificates: no certificates found in PEM data")))
		})

		It("fails when the TLS handshake time is shifted before the certificate validity", func() {
			opts.TLSHandshakeTimeShift = 72 * time.Hour
			_, err := connector.Connect(context.Background(), opts)
			Expect(err).To(MatchError(ContainSubstring("failed to connect to any ordering service node")))
		})
	})

	Describe("Fetch", func() {
		var conn orderer.Connection

		BeforeEach(func() {
			server.SetBlocks(
				orderertest.ConfigBlock("mychannel", 0, &cb.Config{Sequence: 0}),
				orderertest.ConfigBlock("mychannel", 1, &cb.Config{Sequence: 1}),
				orderertest.DataBlock(2, 1),
			)

			var err error
			conn, err = connector.Connect(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			conn.Close()
		})

		readBlock := func(path string) *cb.Block {
			data, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			block, err := protoutil.UnmarshalBlock(data)
			Expect(err).NotTo(HaveOccurred())
			return block
		}

		It("fetches the last config block", func() {
			dest := filepath.Join(tempDir, "config.block")
			Expect(conn.Fetch(context.Background(), "mychannel", "config", dest)).To(Succeed())

			block := readBlock(dest)
			Expect(block.Header.Number).To(Equal(uint64(1)))
			config, err := protoutil.ExtractConfigFromBlock(block)
			Expect(err).NotTo(HaveOccurred())
			Expect(config.Sequence).To(Equal(uint64(1)))

			seeks := server.Seeks()
			Expect(seeks).To(HaveLen(2))
			chdr, err := protoutil.ChannelHeader(seeks[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(chdr.ChannelId).To(Equal("mychannel"))
			Expect(chdr.Type).To(Equal(int32(cb.HeaderType_DELIVER_SEEK_INFO)))
			Expect(seeks[0].Signature).NotTo(BeEmpty())
		})

		It("fetches the newest, oldest and numbered blocks", func() {
			for target, number := range map[string]uint64{"newest": 2, "oldest": 0, "1": 1} {
				dest := filepath.Join(tempDir, target+".block")
				Expect(conn.Fetch(context.Background(), "mychannel", target, dest)).To(Succeed())
				Expect(readBlock(dest).Header.Number).To(Equal(number))
			}
		})

		It("rejects illegal targets", func() {
			err := conn.Fetch(context.Background(), "mychannel", "latest", filepath.Join(tempDir, "x"))
			Expect(err).To(MatchError("fetch target illegal: latest"))
		})

		It("reports the status when the block does not exist", func() {
			err := conn.Fetch(context.Background(), "mychannel", "9", filepath.Join(tempDir, "x"))
			Expect(err).To(MatchError(ContainSubstring("can't read the block: NOT_FOUND")))
			Expect(filepath.Join(tempDir, "x")).NotTo(BeAnExistingFile())

			var statusErr *orderer.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.Status).To(Equal(cb.Status_NOT_FOUND))
			Expect(statusErr.Temporary()).To(BeFalse())
		})
	})

	Describe("Update", func() {
		var (
			conn   orderer.Connection
			path   string
			update []byte
		)

		BeforeEach(func() {
			update = protoutil.MarshalOrPanic(&cb.ConfigUpdate{ChannelId: "mychannel", WriteSet: &cb.ConfigGroup{}})
			env, err := protoutil.NewConfigUpdateEnvelope("mychannel", update)
			Expect(err).NotTo(HaveOccurred())
			path = filepath.Join(tempDir, "update.pb")
			Expect(os.WriteFile(path, protoutil.MarshalOrPanic(env), 0o644)).To(Succeed())

			conn, err = connector.Connect(context.Background(), opts)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			conn.Close()
		})

		It("signs and broadcasts the update", func() {
			Expect(conn.Update(context.Background(), "mychannel", path)).To(Succeed())

			broadcasts := server.Broadcasts()
			Expect(broadcasts).To(HaveLen(1))
			Expect(broadcasts[0].Signature).NotTo(BeEmpty())

			cue, channelID, err := protoutil.ConfigUpdateEnvelopeFromEnvelope(broadcasts[0])
			Expect(err).NotTo(HaveOccurred())
			Expect(channelID).To(Equal("mychannel"))
			Expect(cue.ConfigUpdate).To(Equal(update))

			payload, err := protoutil.UnmarshalPayload(broadcasts[0].Payload)
			Expect(err).NotTo(HaveOccurred())
			mspID, err := protoutil.SignerMSPID(payload.Header.SignatureHeader)
			Expect(err).NotTo(HaveOccurred())
			Expect(mspID).To(Equal("Org1MSP"))
		})

		It("fails when the ordering service rejects the update", func() {
			server.SetBroadcastResponse(cb.Status_BAD_REQUEST, "mod_policy not satisfied")
			err := conn.Update(context.Background(), "mychannel", path)
			Expect(err).To(MatchError("update of channel mychannel failed with status BAD_REQUEST: mod_policy not satisfied"))
		})

		It("reports an unavailable ordering service as temporary", func() {
			server.SetBroadcastResponse(cb.Status_SERVICE_UNAVAILABLE, "no Raft leader")
			err := conn.Update(context.Background(), "mychannel", path)
			Expect(err).To(MatchError("update of channel mychannel failed with status SERVICE_UNAVAILABLE: no Raft leader"))

			var statusErr *orderer.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.Temporary()).To(BeTrue())
		})

		It("refuses updates for another channel", func() {
			err := conn.Update(context.Background(), "otherchannel", path)
			Expect(err).To(MatchError("update " + path + " is for channel mychannel, not otherchannel"))
			Expect(server.Broadcasts()).To(BeEmpty())
		})

		It("fails when the update cannot be read", func() {
			err := conn.Update(context.Background(), "mychannel", filepath.Join(tempDir, "missing.pb"))
			Expect(err).To(MatchError(ContainSubstring("failed to read update")))
		})
	})

	It("uses the seek position requested", func() {
		server.SetBlocks(orderertest.ConfigBlock("mychannel", 0, &cb.Config{}))
		conn, err := connector.Connect(context.Background(), opts)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		Expect(conn.Fetch(context.Background(), "mychannel", "oldest", filepath.Join(tempDir, "b"))).To(Succeed())
		payload, err := protoutil.UnmarshalPayload(server.Seeks()[0].Payload)
		Expect(err).NotTo(HaveOccurred())
		seekInfo := &ab.SeekInfo{}
		Expect(proto.Unmarshal(payload.Data, seekInfo)).To(Succeed())
		Expect(seekInfo.Behavior).To(Equal(ab.SeekInfo_BLOCK_UNTIL_READY))
		Expect(seekInfo.Start.GetOldest()).NotTo(BeNil())
	})
})
