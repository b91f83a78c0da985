/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package workflow sequences the channel configuration operations: it
// builds, fetches and computes configuration updates, collects their
// signatures and submits them to the ordering service.
package workflow

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator/update"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/console"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/orderer"
	"github.com/hyperledger/fabric-channelcfg/internal/signature"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/hyperledger/fabric-lib-go/common/metrics/disabled"
	"go.uber.org/multierr"
)

var logger = flogging.MustGetLogger("channelcfg.workflow")

// Result is the outcome of an operation.
type Result struct {
	Changed bool
	// Path is the file the operation produced or consumed. It is empty
	// when compute_update finds no differences.
	Path string
	// Signers are the MSP IDs that signed the update, after a signing
	// operation.
	Signers []string
	Trace   []State
}

// Workflow executes operations against its collaborators. Unset
// collaborators fall back to in-process implementations; a nil Resolver is
// replaced by a console client built from the parameters of each
// operation.
type Workflow struct {
	Resolver console.Resolver
	// Connector opens ordering service connections. HSMConnector, when
	// set, is used instead for identities whose key is held by an HSM.
	Connector    orderer.Connector
	HSMConnector orderer.Connector
	Computer     update.Computer
	// Signer appends signatures to update envelopes. HSMSigner, when set,
	// is used instead for identities whose key is held by an HSM.
	Signer    signature.Signer
	HSMSigner signature.Signer
	Clock     clock.Clock
	Metrics   *Metrics
	// Timeout bounds every operation. Zero means no limit beyond the
	// caller's context.
	Timeout time.Duration
	// TempDir receives temporary files and credential directories. The
	// system default is used when empty.
	TempDir string
}

type handler func(ctx context.Context, w *Workflow, p *Parameters, run *Run) (Result, error)

var handlers = map[Operation]handler{
	OperationCreate:                  create,
	OperationFetch:                   fetch,
	OperationComputeUpdate:           computeUpdate,
	OperationSignUpdate:              signUpdate,
	OperationSignUpdateOrganizations: signUpdateOrganizations,
	OperationApplyUpdate:             applyUpdate,
}

// Execute validates the parameters of op and runs it. Failures are
// returned as *Error.
func (w *Workflow) Execute(ctx context.Context, op Operation, params *Parameters) (result Result, err error) {
	start := w.clock().Now()
	defer func() { w.observe(op, start, result, err) }()

	h, ok := handlers[op]
	if !ok {
		return Result{}, &Error{Kind: KindValidation, Op: op, Err: invalidOperation(op)}
	}
	if params == nil {
		params = &Parameters{}
	}
	p := params.withDefaults()
	logger.Debugw("Executing operation", p.logFields(op)...)

	if err := p.Validate(op); err != nil {
		return Result{}, &Error{Kind: KindValidation, Op: op, Err: err}
	}

	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	run := newRun(op)
	result, err = h(ctx, w, p, run)
	if err != nil {
		run.enter(StateFailed)
		werr := classify(op, err)
		werr.Trace = run.Trace()
		return Result{}, werr
	}
	result.Trace = run.Trace()
	logger.Infof("Operation %s completed, changed: %t", op, result.Changed)
	return result, nil
}

func (w *Workflow) observe(op Operation, start time.Time, result Result, err error) {
	m := w.Metrics
	if m == nil {
		return
	}
	outcome := resultUnchanged
	switch {
	case err != nil:
		outcome = resultFailed
	case result.Changed:
		outcome = resultChanged
	}
	m.OperationsTotal.With("operation", string(op), "result", outcome).Add(1)
	m.OperationDuration.With("operation", string(op)).Observe(w.clock().Since(start).Seconds())
}

func (w *Workflow) clock() clock.Clock {
	if w.Clock == nil {
		return clock.NewClock()
	}
	return w.Clock
}

func (w *Workflow) resolver(p *Parameters) (console.Resolver, error) {
	if w.Resolver != nil {
		return w.Resolver, nil
	}
	return console.NewClient(p.Console)
}

func (w *Workflow) computer() update.Computer {
	if w.Computer == nil {
		return update.InProcess{}
	}
	return w.Computer
}

func (w *Workflow) signerFor(cred *identity.Credential) signature.Signer {
	if cred.HSM != nil && w.HSMSigner != nil {
		return w.HSMSigner
	}
	if w.Signer == nil {
		return signature.LocalSigner{}
	}
	return w.Signer
}

func (w *Workflow) connectorFor(cred *identity.Credential) orderer.Connector {
	if cred.HSM != nil && w.HSMConnector != nil {
		return w.HSMConnector
	}
	if w.Connector == nil {
		return &orderer.GRPCConnector{Clock: w.clock()}
	}
	return w.Connector
}

// cleanup runs release when the enclosing operation returns. A failure is
// logged and only joined to err when the operation already failed.
func cleanup(err *error, what string, release func() error) {
	rerr := release()
	if rerr == nil {
		return
	}
	logger.Warnf("Failed to clean up %s: %s", what, rerr)
	if *err != nil {
		*err = multierr.Append(*err, rerr)
	}
}

// NewDisabledMetrics returns metrics that record nothing.
func NewDisabledMetrics() *Metrics {
	return NewMetrics(&disabled.Provider{})
}
