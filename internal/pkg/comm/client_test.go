/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package comm_test

import (
	"context"
	"crypto/tls"
	"net"
	"testing"
	"time"

	"github.com/hyperledger/fabric-channelcfg/common/crypto/tlsgen"
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/comm"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func startServer(t *testing.T, opts ...grpc.ServerOption) string {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(server, health.NewServer())
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	return lis.Addr().String()
}

func TestNewConnectionInsecure(t *testing.T) {
	address := startServer(t)

	client, err := comm.NewGRPCClient(comm.ClientConfig{DialTimeout: time.Second})
	require.NoError(t, err)

	conn, err := client.NewConnection(context.Background(), address)
	require.NoError(t, err)
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestNewConnectionTLS(t *testing.T) {
	ca, err := tlsgen.NewCA()
	require.NoError(t, err)
	serverKP, err := ca.NewServerCertKeyPair("127.0.0.1")
	require.NoError(t, err)
	serverCert, err := tls.X509KeyPair(serverKP.Cert, serverKP.Key)
	require.NoError(t, err)

	address := startServer(t, grpc.Creds(credentials.NewTLS(&tls.Config{Certificates: []tls.Certificate{serverCert}})))

	client, err := comm.NewGRPCClient(comm.ClientConfig{
		DialTimeout: time.Second,
		SecOpts: comm.SecureOptions{
			UseTLS:        true,
			ServerRootCAs: [][]byte{ca.CertBytes()},
		},
	})
	require.NoError(t, err)

	conn, err := client.NewConnection(context.Background(), address)
	require.NoError(t, err)
	defer conn.Close()
	_, err = healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)

	otherCA, err := tlsgen.NewCA()
	require.NoError(t, err)
	untrusting, err := comm.NewGRPCClient(comm.ClientConfig{
		DialTimeout: time.Second,
		SecOpts: comm.SecureOptions{
			UseTLS:        true,
			ServerRootCAs: [][]byte{otherCA.CertBytes()},
		},
	})
	require.NoError(t, err)
	_, err = untrusting.NewConnection(context.Background(), address)
	require.ErrorContains(t, err, "failed to create new connection")
}

func TestNewConnectionCertPoolOverride(t *testing.T) {
	ca, err := tlsgen.NewCA()
	require.NoError(t, err)
	otherCA, err := tlsgen.NewCA()
	require.NoError(t, err)
	serverKP, err := ca.NewServerCertKeyPair("127.0.0.1")
	require.NoError(t, err)
	serverCert, err := serverKP.TLSCertificate()
	require.NoError(t, err)

	address := startServer(t, grpc.Creds(credentials.NewTLS(&tls.Config{Certificates: []tls.Certificate{serverCert}})))

	client, err := comm.NewGRPCClient(comm.ClientConfig{
		DialTimeout: time.Second,
		SecOpts: comm.SecureOptions{
			UseTLS:        true,
			ServerRootCAs: [][]byte{otherCA.CertBytes()},
		},
	})
	require.NoError(t, err)

	_, err = client.NewConnection(context.Background(), address)
	require.ErrorContains(t, err, "failed to create new connection")

	pool, err := comm.NewCertPool([][]byte{ca.CertBytes()})
	require.NoError(t, err)
	conn, err := client.NewConnection(context.Background(), address, comm.CertPoolOverride(pool))
	require.NoError(t, err)
	defer conn.Close()
	_, err = healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
}

func TestNewConnectionTimeShift(t *testing.T) {
	ca, err := tlsgen.NewCA()
	require.NoError(t, err)
	serverKP, err := ca.NewServerCertKeyPair("127.0.0.1")
	require.NoError(t, err)
	serverCert, err := tls.X509KeyPair(serverKP.Cert, serverKP.Key)
	require.NoError(t, err)

	address := startServer(t, grpc.Creds(credentials.NewTLS(&tls.Config{Certificates: []tls.Certificate{serverCert}})))

	// the server certificate is not valid yet at the shifted time
	client, err := comm.NewGRPCClient(comm.ClientConfig{
		DialTimeout: time.Second,
		SecOpts: comm.SecureOptions{
			UseTLS:        true,
			ServerRootCAs: [][]byte{ca.CertBytes()},
			TimeShift:     48 * time.Hour,
		},
	})
	require.NoError(t, err)
	_, err = client.NewConnection(context.Background(), address)
	require.ErrorContains(t, err, "failed to create new connection")
}

func TestNewConnectionExpiredServerCert(t *testing.T) {
	ca, err := tlsgen.NewCA()
	require.NoError(t, err)
	serverKP, err := ca.NewExpiredServerCertKeyPair("127.0.0.1")
	require.NoError(t, err)
	serverCert, err := serverKP.TLSCertificate()
	require.NoError(t, err)

	address := startServer(t, grpc.Creds(credentials.NewTLS(&tls.Config{Certificates: []tls.Certificate{serverCert}})))

	newClient := func(shift time.Duration) *comm.GRPCClient {
		client, err := comm.NewGRPCClient(comm.ClientConfig{
			DialTimeout: time.Second,
			SecOpts: comm.SecureOptions{
				UseTLS:        true,
				ServerRootCAs: [][]byte{ca.CertBytes()},
				TimeShift:     shift,
			},
		})
		require.NoError(t, err)
		return client
	}

	_, err = newClient(0).NewConnection(context.Background(), address)
	require.ErrorContains(t, err, "failed to create new connection")

	conn, err := newClient(24*time.Hour).NewConnection(context.Background(), address)
	require.NoError(t, err)
	defer conn.Close()
	_, err = healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
}

func TestNewConnectionUnreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := lis.Addr().String()
	lis.Close()

	client, err := comm.NewGRPCClient(comm.ClientConfig{DialTimeout: 200 * time.Millisecond})
	require.NoError(t, err)
	_, err = client.NewConnection(context.Background(), address)
	require.ErrorContains(t, err, "failed to create new connection")
}

func TestNewGRPCClientBadSecureOptions(t *testing.T) {
	_, err := comm.NewGRPCClient(comm.ClientConfig{
		SecOpts: comm.SecureOptions{UseTLS: true, RequireClientCert: true},
	})
	require.ErrorContains(t, err, "both Key and Certificate are required when using mutual TLS")
}
