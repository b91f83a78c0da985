/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channelcfg

import (
	"context"
	"os"

	"code.cloudfoundry.org/clock"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator/update"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/config"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/metrics/prometheus"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/toolchain"
	"github.com/hyperledger/fabric-channelcfg/internal/signature"
	"github.com/hyperledger/fabric-channelcfg/internal/workflow"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/pkg/errors"
)

//go:generate counterfeiter -o mock/executor.go --fake-name Executor . Executor

// Executor runs channel configuration operations.
type Executor interface {
	Execute(ctx context.Context, op workflow.Operation, params *workflow.Parameters) (workflow.Result, error)
}

// CmdFactory holds the clients used by the sub-commands.
type CmdFactory struct {
	Executor Executor
	Config   *config.Config
	// Metrics, when set, is written to Config.Metrics.Textfile after every
	// operation.
	Metrics *prometheus.Provider
}

// InitCmdFactory loads the configuration, initializes logging and wires
// the workflow collaborators selected by the tools section.
func InitCmdFactory(ctx context.Context, cfgPath string, op workflow.Operation) (*CmdFactory, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	flogging.Init(flogging.Config{
		Format:  cfg.Logging.Format,
		Writer:  os.Stderr,
		LogSpec: cfg.Logging.Spec,
	})

	runner := &toolchain.ExecRunner{BaseEnv: baseEnv()}
	if cfg.Tools.CheckVersions {
		if err := checkTools(ctx, runner, cfg, op); err != nil {
			return nil, err
		}
	}

	provider := prometheus.NewProvider()
	return &CmdFactory{
		Executor: NewWorkflow(cfg, runner, workflow.NewMetrics(provider)),
		Config:   cfg,
		Metrics:  provider,
	}, nil
}

// NewWorkflow builds a workflow from the tools configuration. Identities
// whose key is held by an HSM always go through the peer CLI.
func NewWorkflow(cfg *config.Config, runner toolchain.Runner, metrics *workflow.Metrics) *workflow.Workflow {
	clk := clock.NewClock()
	peerSigner := &toolchain.PeerSigner{Runner: runner, Binary: cfg.Tools.Peer}
	peerConnector := &toolchain.PeerConnector{Runner: runner, Binary: cfg.Tools.Peer, TempDir: cfg.TempDir}

	w := &workflow.Workflow{
		Connector:    &orderer.GRPCConnector{Clock: clk},
		HSMConnector: peerConnector,
		Computer:     update.InProcess{},
		Signer:       signature.LocalSigner{},
		HSMSigner:    peerSigner,
		Clock:        clk,
		Metrics:      metrics,
		Timeout:      cfg.Timeout,
		TempDir:      cfg.TempDir,
	}
	if cfg.Tools.Signer == config.SignerPeer {
		w.Signer = peerSigner
	}
	if cfg.Tools.Connector == config.ConnectorPeer {
		w.Connector = peerConnector
	}
	if cfg.Tools.Computer == config.ComputerCommand {
		w.Computer = &update.Command{Runner: runner, Binary: cfg.Tools.Configtxlator, TempDir: cfg.TempDir}
	}
	return w
}

// checkTools verifies the versions of the binaries op may run.
func checkTools(ctx context.Context, runner toolchain.Runner, cfg *config.Config, op workflow.Operation) error {
	var binaries []string
	switch op {
	case workflow.OperationComputeUpdate:
		if cfg.Tools.Computer == config.ComputerCommand {
			binaries = append(binaries, cfg.Tools.Configtxlator)
		}
	case workflow.OperationSignUpdate, workflow.OperationSignUpdateOrganizations:
		if cfg.Tools.Signer == config.SignerPeer {
			binaries = append(binaries, cfg.Tools.Peer)
		}
	case workflow.OperationFetch, workflow.OperationApplyUpdate:
		if cfg.Tools.Connector == config.ConnectorPeer {
			binaries = append(binaries, cfg.Tools.Peer)
		}
	}
	for _, binary := range binaries {
		if err := toolchain.CheckVersion(ctx, runner, binary, cfg.Tools.MinimumVersion); err != nil {
			return errors.WithMessage(err, "tool check failed")
		}
	}
	return nil
}

// writeMetrics writes the metrics of the run. Failures are logged only.
func (cf *CmdFactory) writeMetrics() {
	if cf.Metrics == nil || cf.Config == nil || cf.Config.Metrics.Textfile == "" {
		return
	}
	if err := cf.Metrics.WriteTextfile(cf.Config.Metrics.Textfile); err != nil {
		logger.Warnf("Failed writing metrics: %s", err)
	}
}

// baseEnv is the environment every external tool inherits. Anything else
// is passed explicitly per command.
func baseEnv() []string {
	var env []string
	for _, name := range []string{"PATH", "HOME", "TMPDIR"} {
		if v, ok := os.LookupEnv(name); ok {
			env = append(env, name+"="+v)
		}
	}
	return env
}
