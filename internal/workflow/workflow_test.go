/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator/update"
	updatemock "github.com/hyperledger/fabric-channelcfg/internal/configtxlator/update/mock"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/console"
	consolemock "github.com/hyperledger/fabric-channelcfg/internal/pkg/console/mock"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity/identitytest"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/metrics/prometheus"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer"
	orderermock "github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer/mock"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer/orderertest"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/toolchain"
	"github.com/hyperledger/fabric-channelcfg/internal/signature"
	signaturemock "github.com/hyperledger/fabric-channelcfg/internal/signature/mock"
	"github.com/hyperledger/fabric-channelcfg/internal/workflow"
	"github.com/hyperledger/fabric-channelcfg/protoutil"
	cb "github.com/hyperledger/fabric-protos-go/common"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("Workflow", func() {
	var (
		ctx        context.Context
		scratch    string
		workDir    string
		resolver   *consolemock.Resolver
		connector  *orderermock.Connector
		connection *orderermock.Connection
		provider   *prometheus.Provider
		wf         *workflow.Workflow
		enrolled   *identity.Enrolled
		consoleCfg console.Config
		nodes      []*console.OrderingServiceNode
	)

	BeforeEach(func() {
		ctx = context.Background()
		scratch = tempDir("scratch")
		workDir = tempDir("work")

		resolver = &consolemock.Resolver{}
		resolver.OrganizationStub = func(_ context.Context, ref interface{}) (*console.Organization, error) {
			name := ref.(string)
			return &console.Organization{Name: name, MSPID: name + "MSP"}, nil
		}
		nodes = []*console.OrderingServiceNode{
			{Name: "orderer1", APIURL: "grpcs://orderer1.example.com:7050", MSPID: "OrdererMSP", TLSCARootCert: []byte("tls-ca")},
			{Name: "orderer2", APIURL: "grpcs://orderer2.example.com:7050", MSPID: "OrdererMSP", TLSCARootCert: []byte("tls-ca")},
		}
		resolver.OrderingServiceReturns(nodes, nil)

		connection = &orderermock.Connection{}
		connector = &orderermock.Connector{}
		connector.ConnectReturns(connection, nil)

		provider = prometheus.NewProvider()
		wf = &workflow.Workflow{
			Resolver:  resolver,
			Connector: connector,
			Clock:     fakeclock.NewFakeClock(time.Now()),
			Metrics:   workflow.NewMetrics(provider),
			TempDir:   scratch,
		}

		enrolled = identitytest.NewEnrolled(GinkgoT(), "Org1 Admin")
		consoleCfg = console.Config{
			Endpoint:  "https://console.example.com",
			AuthType:  console.AuthTypeBasic,
			APIKey:    "admin",
			APISecret: "secret",
		}
	})

	Describe("Execute", func() {
		It("rejects unknown operations", func() {
			_, err := wf.Execute(ctx, workflow.Operation("delete"), &workflow.Parameters{})
			Expect(err).To(MatchError(`delete failed: invalid operation "delete"`))
			var werr *workflow.Error
			Expect(errors.As(err, &werr)).To(BeTrue())
			Expect(werr.Kind).To(Equal(workflow.KindValidation))
		})

		It("validates the parameters before doing anything", func() {
			_, err := wf.Execute(ctx, workflow.OperationFetch, &workflow.Parameters{Name: "mychannel"})
			Expect(err).To(MatchError("fetch failed: operation is fetch but all of the following are missing: api_endpoint, api_authtype, api_key, identity, msp_id, path"))
			Expect(workflow.IsRetryable(err)).To(BeFalse())
			Expect(resolver.OrderingServiceCallCount()).To(Equal(0))
			Expect(connector.ConnectCallCount()).To(Equal(0))
		})

		It("records the outcome of every operation", func() {
			_, err := wf.Execute(ctx, workflow.OperationApplyUpdate, &workflow.Parameters{})
			Expect(err).To(HaveOccurred())

			path := filepath.Join(scratch, "metrics.prom")
			Expect(provider.WriteTextfile(path)).To(Succeed())
			out, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(ContainSubstring(`workflow_operations_total{operation="apply_update",result="failed"} 1`))
			Expect(string(out)).To(ContainSubstring(`workflow_operation_duration_seconds_count{operation="apply_update"} 1`))
		})
	})

	Describe("create", func() {
		var params *workflow.Parameters

		BeforeEach(func() {
			params = &workflow.Parameters{
				Console:       consoleCfg,
				Name:          "mychannel",
				Path:          filepath.Join(workDir, "update.bin"),
				Organizations: []interface{}{"Org1", "Org2"},
				Policies: map[string]interface{}{
					"Admins": map[string]interface{}{
						"type":  3,
						"value": map[string]interface{}{"rule": "MAJORITY", "sub_policy": "Admins"},
					},
				},
			}
		})

		It("reports a change only the first time", func() {
			result, err := wf.Execute(ctx, workflow.OperationCreate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeTrue())
			Expect(result.Path).To(Equal(params.Path))
			Expect(result.Trace).To(Equal([]workflow.State{workflow.StateBuilding, workflow.StateComparing, workflow.StateWriting}))

			cu := readUpdate(params.Path)
			Expect(cu.ChannelId).To(Equal("mychannel"))
			Expect(cu.WriteSet.Groups["Application"].Groups).To(HaveKey("Org1MSP"))
			Expect(cu.WriteSet.Groups["Application"].Groups).To(HaveKey("Org2MSP"))
			Expect(cu.WriteSet.Groups["Application"].Policies).To(HaveKey("Admins"))

			info, err := os.Stat(params.Path)
			Expect(err).NotTo(HaveOccurred())

			result, err = wf.Execute(ctx, workflow.OperationCreate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeFalse())
			Expect(result.Trace).To(Equal([]workflow.State{workflow.StateBuilding, workflow.StateComparing, workflow.StateUnchanged}))

			again, err := os.Stat(params.Path)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.ModTime()).To(Equal(info.ModTime()))
		})

		It("rewrites the update when the inputs change", func() {
			_, err := wf.Execute(ctx, workflow.OperationCreate, params)
			Expect(err).NotTo(HaveOccurred())

			params.Organizations = []interface{}{"Org1"}
			result, err := wf.Execute(ctx, workflow.OperationCreate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeTrue())
			Expect(readUpdate(params.Path).WriteSet.Groups["Application"].Groups).NotTo(HaveKey("Org2MSP"))
		})

		It("replaces a corrupt update", func() {
			Expect(os.WriteFile(params.Path, []byte("garbage"), 0o644)).To(Succeed())
			result, err := wf.Execute(ctx, workflow.OperationCreate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeTrue())
			Expect(readUpdate(params.Path).ChannelId).To(Equal("mychannel"))
		})

		It("adds the consenters of the ordering service nodes", func() {
			params.OrderingServiceNodes = []interface{}{"orderer1", "orderer2"}
			params.Parameters.BatchTimeout = "2s"

			_, err := wf.Execute(ctx, workflow.OperationCreate, params)
			Expect(err).NotTo(HaveOccurred())

			_, ref := resolver.OrderingServiceArgsForCall(0)
			Expect(ref).To(Equal([]interface{}{"orderer1", "orderer2"}))
			cu := readUpdate(params.Path)
			Expect(cu.WriteSet.Groups["Orderer"].Values).To(HaveKey("ConsensusType"))
			Expect(cu.WriteSet.Groups["Orderer"].Values).To(HaveKey("BatchTimeout"))
			Expect(cu.WriteSet.Values).To(HaveKey("OrdererAddresses"))
		})

		It("fails validation for an unresolvable organization", func() {
			resolver.OrganizationReturns(nil, errors.New("organization Org3: no msp component named Org3"))
			_, err := wf.Execute(ctx, workflow.OperationCreate, params)
			Expect(err).To(MatchError("create failed: organization Org3: no msp component named Org3"))
			var werr *workflow.Error
			Expect(errors.As(err, &werr)).To(BeTrue())
			Expect(werr.Kind).To(Equal(workflow.KindValidation))
			Expect(werr.Trace).To(Equal([]workflow.State{workflow.StateBuilding, workflow.StateFailed}))
			Expect(params.Path).NotTo(BeAnExistingFile())
		})

		It("fails validation for an invalid policy before contacting the console", func() {
			params.Policies["Readers"] = filepath.Join(workDir, "missing.json")
			_, err := wf.Execute(ctx, workflow.OperationCreate, params)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("the policy Readers is invalid"))
			Expect(resolver.OrganizationCallCount()).To(Equal(0))
		})

		It("treats a console timeout as retryable", func() {
			resolver.OrganizationReturns(nil, errors.Wrap(context.DeadlineExceeded, "failed to list console components"))
			_, err := wf.Execute(ctx, workflow.OperationCreate, params)
			Expect(workflow.IsRetryable(err)).To(BeTrue())
		})
	})

	Describe("fetch", func() {
		var params *workflow.Parameters

		BeforeEach(func() {
			params = &workflow.Parameters{
				Console:         consoleCfg,
				Name:            "mychannel",
				Path:            filepath.Join(workDir, "config.bin"),
				Identity:        enrolled,
				MSPID:           "Org1MSP",
				OrderingService: "Ordering Service",
			}
			connection.FetchStub = func(_ context.Context, channelID, target, dest string) error {
				block := orderertest.ConfigBlock(channelID, 4, sampleConfig(4, "Admins"))
				return os.WriteFile(dest, protoutil.MarshalOrPanic(block), 0o644)
			}
		})

		It("writes the channel configuration when it changed", func() {
			result, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeTrue())

			data, err := os.ReadFile(params.Path)
			Expect(err).NotTo(HaveOccurred())
			config := &cb.Config{}
			Expect(proto.Unmarshal(data, config)).To(Succeed())
			Expect(config.Sequence).To(Equal(uint64(4)))

			result, err = wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeFalse())

			_, channelID, target, _ := connection.FetchArgsForCall(0)
			Expect(channelID).To(Equal("mychannel"))
			Expect(target).To(Equal("config"))
			Expect(connection.CloseCallCount()).To(Equal(2))
		})

		It("connects with the identity of the parameters", func() {
			_, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).NotTo(HaveOccurred())

			_, ref := resolver.OrderingServiceArgsForCall(0)
			Expect(ref).To(Equal("Ordering Service"))

			_, opts := connector.ConnectArgsForCall(0)
			Expect(opts.Signer).NotTo(BeNil())
			Expect(opts.Credential.MSPID).To(Equal("Org1MSP"))
			Expect(opts.Endpoints).To(ConsistOf(
				&orderer.Endpoint{Address: "orderer1.example.com:7050", RootCerts: [][]byte{[]byte("tls-ca")}},
				&orderer.Endpoint{Address: "orderer2.example.com:7050", RootCerts: [][]byte{[]byte("tls-ca")}},
			))
		})

		It("removes every temporary file and credential", func() {
			_, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries(scratch)).To(BeEmpty())

			connection.FetchReturns(errors.New("can't read the block: NOT_FOUND"))
			_, err = wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).To(MatchError("fetch failed: can't read the block: NOT_FOUND"))
			Expect(workflow.IsRetryable(err)).To(BeFalse())
			Expect(entries(scratch)).To(BeEmpty())
		})

		It("treats connection failures as retryable", func() {
			connector.ConnectReturns(nil, errors.New("failed to connect to any ordering service node"))
			_, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).To(MatchError("fetch failed: failed to connect to any ordering service node"))
			Expect(workflow.IsRetryable(err)).To(BeTrue())
			Expect(entries(scratch)).To(BeEmpty())
		})

		It("treats deadlines as retryable", func() {
			connection.FetchReturns(errors.WithMessage(context.DeadlineExceeded, "failed to fetch config block"))
			_, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(workflow.IsRetryable(err)).To(BeTrue())
			var werr *workflow.Error
			Expect(errors.As(err, &werr)).To(BeTrue())
			Expect(werr.Trace).To(Equal([]workflow.State{workflow.StateBuilding, workflow.StateFailed}))
		})

		It("keeps a cleanup failure next to the primary error", func() {
			connection.FetchReturns(errors.New("stream closed"))
			connection.CloseReturns(errors.New("close failed"))
			_, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).To(MatchError("fetch failed: stream closed; close failed"))
		})

		It("does not fail a successful fetch on a cleanup failure", func() {
			connection.CloseReturns(errors.New("close failed"))
			result, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeTrue())
		})

		It("rejects both an ordering service and a node list", func() {
			params.OrderingServiceNodes = []interface{}{"orderer1"}
			_, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).To(MatchError("fetch failed: parameters are mutually exclusive: ordering_service|ordering_service_nodes"))
		})

		It("rejects a block that does not carry a config", func() {
			connection.FetchStub = func(_ context.Context, _, _, dest string) error {
				return os.WriteFile(dest, protoutil.MarshalOrPanic(orderertest.DataBlock(5, 4)), 0o644)
			}
			_, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("could not extract the config of channel mychannel"))
			Expect(params.Path).NotTo(BeAnExistingFile())
		})
	})

	Describe("compute_update", func() {
		var params *workflow.Parameters

		BeforeEach(func() {
			params = &workflow.Parameters{
				Name:     "mychannel",
				Path:     filepath.Join(workDir, "update.bin"),
				Original: writeConfig(workDir, "original.bin", sampleConfig(1, "Admins")),
				Updated:  writeConfig(workDir, "updated.bin", sampleConfig(1, "Writers")),
			}
		})

		It("writes the update envelope", func() {
			result, err := wf.Execute(ctx, workflow.OperationComputeUpdate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeTrue())
			Expect(result.Path).To(Equal(params.Path))

			cu := readUpdate(params.Path)
			Expect(cu.ChannelId).To(Equal("mychannel"))
			Expect(cu.WriteSet.Groups["Application"].ModPolicy).To(Equal("Writers"))

			result, err = wf.Execute(ctx, workflow.OperationComputeUpdate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeFalse())
		})

		It("removes a stale update when there are no differences", func() {
			Expect(os.WriteFile(params.Path, []byte("stale"), 0o644)).To(Succeed())
			params.Updated = params.Original

			result, err := wf.Execute(ctx, workflow.OperationComputeUpdate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeFalse())
			Expect(result.Path).To(BeEmpty())
			Expect(result.Trace).To(Equal([]workflow.State{workflow.StateBuilding, workflow.StateComparing, workflow.StateUnchanged}))
			Expect(params.Path).NotTo(BeAnExistingFile())
		})

		It("treats a failing tool as retryable", func() {
			computer := &updatemock.Computer{}
			computer.ComputeReturns(nil, errors.WithMessage(&toolchain.ExitError{Command: "configtxlator compute_update", ExitCode: 2, Stderr: "killed"}, "failed to compute update"))
			wf.Computer = computer

			_, err := wf.Execute(ctx, workflow.OperationComputeUpdate, params)
			Expect(workflow.IsRetryable(err)).To(BeTrue())
		})

		It("maps the no differences result of the tool", func() {
			computer := &updatemock.Computer{}
			computer.ComputeReturns(nil, update.ErrNoDifferences)
			wf.Computer = computer

			result, err := wf.Execute(ctx, workflow.OperationComputeUpdate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeFalse())
			_, channelID, original, updated := computer.ComputeArgsForCall(0)
			Expect(channelID).To(Equal("mychannel"))
			Expect(original).To(Equal(params.Original))
			Expect(updated).To(Equal(params.Updated))
		})
	})

	Describe("signing", func() {
		var updatePath string

		BeforeEach(func() {
			result, err := wf.Execute(ctx, workflow.OperationCreate, &workflow.Parameters{
				Console:       consoleCfg,
				Name:          "mychannel",
				Path:          filepath.Join(workDir, "update.bin"),
				Organizations: []interface{}{"Org1"},
				Policies: map[string]interface{}{
					"Admins": map[string]interface{}{
						"type":  3,
						"value": map[string]interface{}{"rule": "ANY", "sub_policy": "Admins"},
					},
				},
			})
			Expect(err).NotTo(HaveOccurred())
			updatePath = result.Path
		})

		Describe("sign_update", func() {
			var params *workflow.Parameters

			BeforeEach(func() {
				params = &workflow.Parameters{
					Name:     "mychannel",
					Path:     updatePath,
					Identity: enrolled,
					MSPID:    "Org1MSP",
				}
			})

			It("signs once per organization", func() {
				result, err := wf.Execute(ctx, workflow.OperationSignUpdate, params)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Changed).To(BeTrue())
				Expect(result.Signers).To(Equal([]string{"Org1MSP"}))
				Expect(result.Trace).To(Equal([]workflow.State{workflow.StateBuilding, workflow.StateSigning}))

				result, err = wf.Execute(ctx, workflow.OperationSignUpdate, params)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Changed).To(BeFalse())
				Expect(result.Signers).To(Equal([]string{"Org1MSP"}))

				ledger, err := signature.Load(updatePath)
				Expect(err).NotTo(HaveOccurred())
				Expect(ledger.Signers()).To(Equal([]string{"Org1MSP"}))
				Expect(entries(scratch)).To(BeEmpty())
			})

			It("removes the credential when signing fails", func() {
				signer := &signaturemock.Signer{}
				signer.SignReturns(&toolchain.ExitError{Command: "peer channel signconfigtx", ExitCode: 1, Stderr: "bad key"})
				wf.Signer = signer

				_, err := wf.Execute(ctx, workflow.OperationSignUpdate, params)
				Expect(err).To(HaveOccurred())
				Expect(workflow.IsRetryable(err)).To(BeTrue())
				Expect(signer.SignCallCount()).To(Equal(1))
				Expect(entries(scratch)).To(BeEmpty())
			})

			It("uses the HSM signer for HSM identities", func() {
				hsmSigner := &signaturemock.Signer{}
				hsmSigner.SignStub = func(ctx context.Context, path string, cred *identity.Credential) error {
					Expect(cred.HSM).NotTo(BeNil())
					Expect(cred.MSPDir).To(BeADirectory())
					return signature.LocalSigner{}.Sign(ctx, path, withoutHSM(cred))
				}
				wf.HSMSigner = hsmSigner
				params.HSM = &identity.HSMConfig{Library: "/usr/lib/softhsm/libsofthsm2.so", Label: "token", Pin: "1234"}

				result, err := wf.Execute(ctx, workflow.OperationSignUpdate, params)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Changed).To(BeTrue())
				Expect(hsmSigner.SignCallCount()).To(Equal(1))
			})

			It("rejects an update that is not an envelope", func() {
				Expect(os.WriteFile(updatePath, []byte("garbage"), 0o644)).To(Succeed())
				_, err := wf.Execute(ctx, workflow.OperationSignUpdate, params)
				var werr *workflow.Error
				Expect(errors.As(err, &werr)).To(BeTrue())
				Expect(werr.Kind).To(Equal(workflow.KindValidation))
			})
		})

		Describe("sign_update_organizations", func() {
			var (
				orgsDir string
				params  *workflow.Parameters
			)

			BeforeEach(func() {
				orgsDir = tempDir("organizations")
				for _, mspID := range []string{"Org1MSP", "Org2MSP", "Org3MSP"} {
					writeOrganization(orgsDir, mspID, identitytest.NewEnrolled(GinkgoT(), mspID+" Admin"))
				}
				params = &workflow.Parameters{
					Name:             "mychannel",
					Path:             updatePath,
					Organizations:    []interface{}{"Org1MSP", "Org2MSP", "Org1MSP"},
					OrganizationsDir: orgsDir,
				}
			})

			It("signs for every organization once", func() {
				result, err := wf.Execute(ctx, workflow.OperationSignUpdateOrganizations, params)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Changed).To(BeTrue())
				Expect(result.Signers).To(Equal([]string{"Org1MSP", "Org2MSP"}))

				result, err = wf.Execute(ctx, workflow.OperationSignUpdateOrganizations, params)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Changed).To(BeFalse())
				Expect(result.Trace).To(Equal([]workflow.State{workflow.StateBuilding, workflow.StateUnchanged}))
				Expect(entries(scratch)).To(BeEmpty())
			})

			It("stops at the first failure and keeps earlier signatures", func() {
				signer := &signaturemock.Signer{}
				signer.SignStub = func(ctx context.Context, path string, cred *identity.Credential) error {
					if cred.MSPID == "Org2MSP" {
						return errors.New("pkcs11 token not found")
					}
					return signature.LocalSigner{}.Sign(ctx, path, cred)
				}
				wf.Signer = signer
				params.Organizations = []interface{}{"Org1MSP", "Org2MSP", "Org3MSP"}

				_, err := wf.Execute(ctx, workflow.OperationSignUpdateOrganizations, params)
				Expect(err).To(MatchError(ContainSubstring("failed to sign " + updatePath + " as Org2MSP: pkcs11 token not found")))
				Expect(signer.SignCallCount()).To(Equal(2))
				Expect(entries(scratch)).To(BeEmpty())

				ledger, err := signature.Load(updatePath)
				Expect(err).NotTo(HaveOccurred())
				Expect(ledger.Signers()).To(Equal([]string{"Org1MSP"}))

				signer.SignStub = func(ctx context.Context, path string, cred *identity.Credential) error {
					return signature.LocalSigner{}.Sign(ctx, path, cred)
				}
				result, err := wf.Execute(ctx, workflow.OperationSignUpdateOrganizations, params)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Signers).To(Equal([]string{"Org1MSP", "Org2MSP", "Org3MSP"}))
				Expect(signer.SignCallCount()).To(Equal(4))
			})

			It("fails for an organization without an MSP directory", func() {
				params.Organizations = []interface{}{"Org4MSP"}
				_, err := wf.Execute(ctx, workflow.OperationSignUpdateOrganizations, params)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("for organization Org4MSP does not exist"))
				var werr *workflow.Error
				Expect(errors.As(err, &werr)).To(BeTrue())
				Expect(werr.Kind).To(Equal(workflow.KindValidation))
			})

			It("requires MSP IDs", func() {
				params.Organizations = []interface{}{map[string]interface{}{"msp_id": "Org1MSP"}}
				_, err := wf.Execute(ctx, workflow.OperationSignUpdateOrganizations, params)
				Expect(err).To(MatchError(ContainSubstring("organizations must be a list of MSP IDs")))
			})
		})
	})

	Describe("apply_update", func() {
		var params *workflow.Parameters

		BeforeEach(func() {
			path := filepath.Join(workDir, "update.bin")
			Expect(os.WriteFile(path, []byte("signed update"), 0o644)).To(Succeed())
			params = &workflow.Parameters{
				Console:              consoleCfg,
				Name:                 "mychannel",
				Path:                 path,
				Identity:             enrolled,
				MSPID:                "Org1MSP",
				OrderingServiceNodes: []interface{}{"orderer1"},
			}
		})

		It("always reports a change", func() {
			result, err := wf.Execute(ctx, workflow.OperationApplyUpdate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeTrue())
			Expect(result.Trace).To(Equal([]workflow.State{workflow.StateBuilding, workflow.StateSubmitting, workflow.StateApplied}))

			_, channelID, path := connection.UpdateArgsForCall(0)
			Expect(channelID).To(Equal("mychannel"))
			Expect(path).To(Equal(params.Path))
			Expect(connection.CloseCallCount()).To(Equal(1))
			Expect(entries(scratch)).To(BeEmpty())
		})

		It("requires the update to exist before connecting", func() {
			params.Path = filepath.Join(workDir, "missing.bin")
			_, err := wf.Execute(ctx, workflow.OperationApplyUpdate, params)
			Expect(err).To(MatchError("apply_update failed: update " + params.Path + " does not exist"))
			Expect(connector.ConnectCallCount()).To(Equal(0))
		})

		It("surfaces a rejected update", func() {
			connection.UpdateReturns(errors.New("update of channel mychannel failed with status BAD_REQUEST: error applying config update"))
			_, err := wf.Execute(ctx, workflow.OperationApplyUpdate, params)
			Expect(err).To(MatchError("apply_update failed: update of channel mychannel failed with status BAD_REQUEST: error applying config update"))
			Expect(workflow.IsRetryable(err)).To(BeFalse())
		})

		It("requires an HSM connector for HSM identities", func() {
			enrolled.PrivateKey = nil
			params.HSM = &identity.HSMConfig{Library: "/usr/lib/softhsm/libsofthsm2.so", Label: "token", Pin: "1234"}
			wf.Connector = nil

			_, err := wf.Execute(ctx, workflow.OperationApplyUpdate, params)
			Expect(err).To(MatchError("apply_update failed: the private key of Org1MSP is held by an HSM and no connector for HSM identities is configured"))
		})
	})

	Describe("over gRPC", func() {
		var (
			server *orderertest.Server
			params *workflow.Parameters
		)

		BeforeEach(func() {
			var err error
			server, err = orderertest.NewServer(nil)
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(server.Stop)
			server.SetBlocks(
				orderertest.ConfigBlock("mychannel", 0, sampleConfig(0, "Admins")),
				orderertest.DataBlock(1, 0),
			)

			resolver.OrderingServiceReturns([]*console.OrderingServiceNode{
				{Name: "orderer1", APIURL: "grpc://" + server.Address(), MSPID: "OrdererMSP"},
			}, nil)
			wf.Connector = nil

			params = &workflow.Parameters{
				Console:         consoleCfg,
				Name:            "mychannel",
				Path:            filepath.Join(workDir, "config.bin"),
				Identity:        enrolled,
				MSPID:           "Org1MSP",
				OrderingService: "Ordering Service",
			}
		})

		It("fetches the config and applies updates", func() {
			result, err := wf.Execute(ctx, workflow.OperationFetch, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeTrue())
			Expect(server.Seeks()).To(HaveLen(2))

			params.Original = params.Path
			params.Updated = writeConfig(workDir, "updated.bin", sampleConfig(0, "Writers"))
			params.Path = filepath.Join(workDir, "update.bin")
			_, err = wf.Execute(ctx, workflow.OperationComputeUpdate, params)
			Expect(err).NotTo(HaveOccurred())

			result, err = wf.Execute(ctx, workflow.OperationApplyUpdate, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Changed).To(BeTrue())
			Expect(server.Broadcasts()).To(HaveLen(1))
			Expect(entries(scratch)).To(BeEmpty())
		})
	})
})

func withoutHSM(cred *identity.Credential) *identity.Credential {
	c := *cred
	c.HSM = nil
	return &c
}
