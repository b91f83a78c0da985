/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package orderer talks to the ordering service of a channel: it fetches
// blocks and submits configuration updates.
package orderer

import (
	"context"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/comm"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/identity"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"google.golang.org/grpc"
)

var logger = flogging.MustGetLogger("channelcfg.orderer")

//go:generate counterfeiter -o mock/connector.go --fake-name Connector . Connector

// Connector opens connections to an ordering service.
type Connector interface {
	Connect(ctx context.Context, opts Options) (Connection, error)
}

//go:generate counterfeiter -o mock/connection.go --fake-name Connection . Connection

// Connection is an open connection to one ordering service node.
type Connection interface {
	// Fetch writes the block selected by target to dest. Target is one of
	// config, newest, oldest, or a block number.
	Fetch(ctx context.Context, channelID, target, dest string) error
	// Update submits the CONFIG_UPDATE envelope stored at path.
	Update(ctx context.Context, channelID, path string) error
	Close() error
}

// Options describe how to reach and authenticate to the ordering service.
type Options struct {
	Endpoints []*Endpoint
	// Signer signs deliver requests and submitted updates.
	Signer identity.SignerSerializer
	// Credential is the on-disk form of the signing identity for
	// connectors that delegate to external tools.
	Credential            *identity.Credential
	TLSHandshakeTimeShift time.Duration
	DialTimeout           time.Duration
}

// GRPCConnector connects to ordering service nodes over gRPC.
type GRPCConnector struct {
	Clock clock.Clock
}

// Connect dials the endpoints in order and returns a connection to the
// first node that answers.
func (g *GRPCConnector) Connect(ctx context.Context, opts Options) (Connection, error) {
	if len(opts.Endpoints) == 0 {
		return nil, errors.New("no ordering service endpoints supplied")
	}
	if opts.Signer == nil {
		return nil, errors.New("no signer supplied")
	}

	secure, plain, err := g.clients(opts)
	if err != nil {
		return nil, err
	}

	var errs error
	for _, endpoint := range opts.Endpoints {
		conn, err := dial(ctx, endpoint, secure, plain)
		if err == nil {
			logger.Debugf("Connected to ordering service node %s", endpoint.Address)
			return &grpcConnection{
				address: endpoint.Address,
				conn:    conn,
				client:  ab.NewAtomicBroadcastClient(conn),
				signer:  opts.Signer,
			}, nil
		}
		logger.Warnf("Failed to connect to ordering service node %s: %s", endpoint.Address, err)
		errs = multierr.Append(errs, errors.WithMessage(err, endpoint.Address))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.WithMessage(errs, "failed to connect to any ordering service node")
}

// clients returns the TLS client shared by every endpoint with root
// certificates and the plaintext client for the others.
func (g *GRPCConnector) clients(opts Options) (secure, plain *comm.GRPCClient, err error) {
	config := comm.ClientConfig{
		KaOpts:      comm.DefaultKeepaliveOptions,
		DialTimeout: opts.DialTimeout,
	}
	if plain, err = comm.NewGRPCClient(config); err != nil {
		return nil, nil, err
	}
	config.SecOpts = comm.SecureOptions{
		UseTLS:    true,
		TimeShift: opts.TLSHandshakeTimeShift,
		Clock:     g.Clock,
	}
	if secure, err = comm.NewGRPCClient(config); err != nil {
		return nil, nil, err
	}
	return secure, plain, nil
}

func dial(ctx context.Context, endpoint *Endpoint, secure, plain *comm.GRPCClient) (*grpc.ClientConn, error) {
	if len(endpoint.RootCerts) == 0 {
		return plain.NewConnection(ctx, endpoint.Address)
	}
	pool, err := comm.NewCertPool(endpoint.RootCerts)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid TLS root certificates")
	}
	return secure.NewConnection(ctx, endpoint.Address, comm.CertPoolOverride(pool))
}

type grpcConnection struct {
	address string
	conn    *grpc.ClientConn
	client  ab.AtomicBroadcastClient
	signer  identity.SignerSerializer
}

func (c *grpcConnection) Close() error {
	return c.conn.Close()
}
