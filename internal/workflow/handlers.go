/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"context"
	"os"

	"github.com/hyperledger/fabric-channelcfg/internal/configbuilder"
	"github.com/hyperledger/fabric-channelcfg/internal/configdiff"
	"github.com/hyperledger/fabric-channelcfg/internal/configtree"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator/update"
	"github.com/hyperledger/fabric-channelcfg/internal/fileutil"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/console"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer"
	"github.com/hyperledger/fabric-channelcfg/internal/signature"
	"github.com/hyperledger/fabric-channelcfg/protoutil"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

func create(ctx context.Context, w *Workflow, p *Parameters, run *Run) (Result, error) {
	run.enter(StateBuilding)

	policies, err := configbuilder.ResolvePolicies(p.Policies)
	if err != nil {
		return Result{}, invalid(err)
	}
	resolver, err := w.resolver(p)
	if err != nil {
		return Result{}, invalid(err)
	}

	mspIDs := make([]string, 0, len(p.Organizations))
	for _, ref := range p.Organizations {
		org, err := resolver.Organization(ctx, ref)
		if err != nil {
			return Result{}, unresolved(err)
		}
		mspIDs = append(mspIDs, org.MSPID)
	}

	opts := []configbuilder.Option{
		configbuilder.WithConsortium(p.Consortium),
		configbuilder.WithOrganizations(mspIDs...),
		configbuilder.WithPolicies(policies),
		configbuilder.WithCapabilities(p.Capabilities),
	}
	if len(p.ACLs) > 0 {
		opts = append(opts, configbuilder.WithACLs(p.ACLs))
	}
	if p.Parameters.BatchSize != nil {
		opts = append(opts, configbuilder.WithBatchSize(*p.Parameters.BatchSize))
	}
	if p.Parameters.BatchTimeout != "" {
		opts = append(opts, configbuilder.WithBatchTimeout(p.Parameters.BatchTimeout))
	}
	if p.OrderingServiceNodes != nil {
		nodes, err := resolver.OrderingService(ctx, p.OrderingServiceNodes)
		if err != nil {
			return Result{}, unresolved(err)
		}
		opts = append(opts, configbuilder.WithConsenters(consenters(nodes)))
	}

	upd, err := configbuilder.Build(p.Name, opts...)
	if err != nil {
		return Result{}, invalid(err)
	}
	env, err := upd.Envelope()
	if err != nil {
		return Result{}, err
	}
	data, err := configtree.Marshal(env)
	if err != nil {
		return Result{}, err
	}

	changed, err := persist(run, configtxlator.Envelope, p.Path, data)
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: changed, Path: p.Path}, nil
}

func consenters(nodes []*console.OrderingServiceNode) []configbuilder.Node {
	result := make([]configbuilder.Node, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, configbuilder.Node{
			Name:          n.Name,
			APIURL:        n.APIURL,
			TLSCert:       n.TLSCert,
			ClientTLSCert: n.ClientTLSCert,
			ServerTLSCert: n.ServerTLSCert,
		})
	}
	return result
}

func fetch(ctx context.Context, w *Workflow, p *Parameters, run *Run) (result Result, err error) {
	run.enter(StateBuilding)

	conn, release, err := w.connect(ctx, p)
	if err != nil {
		return Result{}, err
	}
	defer cleanup(&err, "ordering service connection", release)

	blockPath, releaseBlock, err := fileutil.TempFile(w.TempDir, "block-*.pb")
	if err != nil {
		return Result{}, err
	}
	defer cleanup(&err, "temporary block", releaseBlock)

	if err := conn.Fetch(ctx, p.Name, "config", blockPath); err != nil {
		return Result{}, err
	}
	raw, err := os.ReadFile(blockPath)
	if err != nil {
		return Result{}, errors.Wrap(err, "could not read fetched block")
	}
	block, err := protoutil.UnmarshalBlock(raw)
	if err != nil {
		return Result{}, err
	}
	config, err := protoutil.ExtractConfigFromBlock(block)
	if err != nil {
		return Result{}, errors.WithMessagef(err, "could not extract the config of channel %s", p.Name)
	}
	data, err := configtree.Marshal(config)
	if err != nil {
		return Result{}, err
	}

	changed, err := persist(run, configtxlator.Config, p.Path, data)
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: changed, Path: p.Path}, nil
}

func computeUpdate(ctx context.Context, w *Workflow, p *Parameters, run *Run) (Result, error) {
	run.enter(StateBuilding)

	marshaled, err := w.computer().Compute(ctx, p.Name, p.Original, p.Updated)
	if update.IsNoDifferences(err) {
		run.enter(StateComparing)
		removed, err := fileutil.RemoveIfExists(p.Path)
		if err != nil {
			return Result{}, errors.WithMessagef(err, "failed to remove stale update %s", p.Path)
		}
		if removed {
			logger.Infof("No differences between %s and %s, removed stale update %s", p.Original, p.Updated, p.Path)
		}
		run.enter(StateUnchanged)
		return Result{}, nil
	}
	if err != nil {
		return Result{}, err
	}

	cu, err := protoutil.UnmarshalConfigUpdate(marshaled)
	if err != nil {
		return Result{}, err
	}
	stable, err := configtree.Marshal(cu)
	if err != nil {
		return Result{}, err
	}
	env, err := protoutil.NewConfigUpdateEnvelope(p.Name, stable)
	if err != nil {
		return Result{}, err
	}
	data, err := configtree.Marshal(env)
	if err != nil {
		return Result{}, err
	}

	changed, err := persist(run, configtxlator.Envelope, p.Path, data)
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: changed, Path: p.Path}, nil
}

func signUpdate(ctx context.Context, w *Workflow, p *Parameters, run *Run) (result Result, err error) {
	run.enter(StateBuilding)

	enrolled, err := identity.ResolveEnrolled(p.Identity)
	if err != nil {
		return Result{}, invalid(err)
	}
	identity.CheckExpiration(enrolled, p.MSPID, w.clock().Now(), logger.Debugf, logger.Warnf)
	ledger, err := signature.Load(p.Path)
	if err != nil {
		return Result{}, invalid(err)
	}
	if ledger.Signed(p.MSPID) {
		logger.Infof("Update %s is already signed by %s", p.Path, p.MSPID)
		run.enter(StateUnchanged)
		return Result{Path: p.Path, Signers: ledger.Signers()}, nil
	}

	cred, err := identity.Materialize(w.TempDir, enrolled, p.MSPID, p.HSM)
	if err != nil {
		return Result{}, err
	}
	defer cleanup(&err, "credential of "+p.MSPID, cred.Close)

	run.enter(StateSigning)
	changed, err := ledger.SignAs(ctx, w.signerFor(cred), cred)
	if err != nil {
		return Result{}, err
	}
	return Result{Changed: changed, Path: p.Path, Signers: ledger.Signers()}, nil
}

// signUpdateOrganizations signs for each organization in turn and stops at
// the first failure. Signatures added before the failure stay in the
// envelope; a rerun skips them.
func signUpdateOrganizations(ctx context.Context, w *Workflow, p *Parameters, run *Run) (Result, error) {
	run.enter(StateBuilding)

	mspIDs, err := p.organizationIDs()
	if err != nil {
		return Result{}, invalid(err)
	}
	ledger, err := signature.Load(p.Path)
	if err != nil {
		return Result{}, invalid(err)
	}

	changed := false
	for _, mspID := range mspIDs {
		if ledger.Signed(mspID) {
			logger.Debugf("Update %s is already signed by %s", p.Path, mspID)
			continue
		}
		run.enter(StateSigning)
		signed, err := w.signAsOrganization(ctx, ledger, p, mspID)
		if err != nil {
			return Result{}, errors.WithMessagef(err, "failed to sign %s as %s", p.Path, mspID)
		}
		changed = changed || signed
	}
	if !changed {
		run.enter(StateUnchanged)
	}
	return Result{Changed: changed, Path: p.Path, Signers: ledger.Signers()}, nil
}

func (w *Workflow) signAsOrganization(ctx context.Context, ledger *signature.Ledger, p *Parameters, mspID string) (signed bool, err error) {
	cred, err := identity.ForOrganization(w.TempDir, p.OrganizationsDir, mspID, p.HSM)
	if err != nil {
		return false, invalid(err)
	}
	defer cleanup(&err, "credential of "+mspID, cred.Close)
	return ledger.SignAs(ctx, w.signerFor(cred), cred)
}

// applyUpdate always reports a change: resubmitting an applied update is
// rejected by the ordering service.
func applyUpdate(ctx context.Context, w *Workflow, p *Parameters, run *Run) (result Result, err error) {
	run.enter(StateBuilding)

	exists, _, err := fileutil.FileExists(p.Path)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return Result{}, invalid(errors.Errorf("update %s does not exist", p.Path))
	}

	conn, release, err := w.connect(ctx, p)
	if err != nil {
		return Result{}, err
	}
	defer cleanup(&err, "ordering service connection", release)

	run.enter(StateSubmitting)
	if err := conn.Update(ctx, p.Name, p.Path); err != nil {
		return Result{}, err
	}
	run.enter(StateApplied)
	return Result{Changed: true, Path: p.Path}, nil
}

// persist writes data to path unless the file already holds the same
// configuration.
func persist(run *Run, kind configtxlator.MessageKind, path string, data []byte) (bool, error) {
	run.enter(StateComparing)
	changed, err := configdiff.WriteIfChanged(kind, path, data)
	if err != nil {
		return false, err
	}
	if changed {
		run.enter(StateWriting)
	} else {
		run.enter(StateUnchanged)
	}
	return changed, nil
}

// connect opens a connection to the ordering service scoped to the
// identity of the parameters. The returned release func closes the
// connection and removes the credential.
func (w *Workflow) connect(ctx context.Context, p *Parameters) (orderer.Connection, func() error, error) {
	enrolled, err := identity.ResolveEnrolled(p.Identity)
	if err != nil {
		return nil, nil, invalid(err)
	}
	identity.CheckExpiration(enrolled, p.MSPID, w.clock().Now(), logger.Debugf, logger.Warnf)
	var signer identity.SignerSerializer
	if len(enrolled.PrivateKey) != 0 {
		si, err := identity.NewSigningIdentity(enrolled, p.MSPID)
		if err != nil {
			return nil, nil, invalid(err)
		}
		signer = si
	} else if w.HSMConnector == nil && (w.Connector == nil || isGRPC(w.Connector)) {
		return nil, nil, invalid(errors.Errorf("the private key of %s is held by an HSM and no connector for HSM identities is configured", p.MSPID))
	}

	resolver, err := w.resolver(p)
	if err != nil {
		return nil, nil, invalid(err)
	}
	ref := p.OrderingService
	if ref == nil {
		ref = p.OrderingServiceNodes
	}
	nodes, err := resolver.OrderingService(ctx, ref)
	if err != nil {
		return nil, nil, unresolved(err)
	}
	eps, err := endpoints(nodes)
	if err != nil {
		return nil, nil, invalid(err)
	}

	cred, err := identity.Materialize(w.TempDir, enrolled, p.MSPID, p.HSM)
	if err != nil {
		return nil, nil, err
	}
	conn, err := w.connectorFor(cred).Connect(ctx, orderer.Options{
		Endpoints:             eps,
		Signer:                signer,
		Credential:            cred,
		TLSHandshakeTimeShift: p.TLSHandshakeTimeShift,
	})
	if err != nil {
		if cerr := cred.Close(); cerr != nil {
			logger.Warnf("Failed to clean up credential of %s: %s", p.MSPID, cerr)
			err = multierr.Append(err, cerr)
		}
		return nil, nil, transient(err)
	}

	release := func() error {
		return multierr.Combine(conn.Close(), cred.Close())
	}
	return conn, release, nil
}

// endpoints groups the nodes by MSP ID so that every node is verified with
// the TLS roots of its own organization.
func endpoints(nodes []*console.OrderingServiceNode) ([]*orderer.Endpoint, error) {
	if len(nodes) == 0 {
		return nil, errors.New("the ordering service has no nodes")
	}
	orgs := map[string]orderer.OrdererOrg{}
	for _, n := range nodes {
		address, err := n.Address()
		if err != nil {
			return nil, err
		}
		org := orgs[n.MSPID]
		org.Addresses = append(org.Addresses, address)
		root := n.TLSCARootCert
		if len(root) == 0 {
			root = n.TLSCert
		}
		if len(root) != 0 && !containsCert(org.RootCerts, root) {
			org.RootCerts = append(org.RootCerts, root)
		}
		orgs[n.MSPID] = org
	}

	source := orderer.NewConnectionSource(logger, nil)
	source.Update(nil, orgs)
	return source.ShuffledEndpoints(), nil
}

func isGRPC(c orderer.Connector) bool {
	_, ok := c.(*orderer.GRPCConnector)
	return ok
}

func containsCert(certs [][]byte, cert []byte) bool {
	for _, c := range certs {
		if string(c) == string(cert) {
			return true
		}
	}
	return false
}
