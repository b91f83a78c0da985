/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package orderertest provides an in-memory ordering service node.
package orderertest

import (
	"crypto/tls"
	"io"
	"net"
	"sync"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channelcfg/protoutil"
	cb "github.com/hyperledger/fabric-protos-go/common"
	ab "github.com/hyperledger/fabric-protos-go/orderer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// Server serves a fixed chain of blocks over Deliver and records the
// envelopes received over Broadcast.
type Server struct {
	mutex           sync.Mutex
	blocks          []*cb.Block
	broadcastStatus cb.Status
	broadcastInfo   string
	seeks           []*cb.Envelope
	broadcasts      []*cb.Envelope

	listener   net.Listener
	grpcServer *grpc.Server
}

// NewServer starts a node listening on a random local port. The node uses
// TLS when cert is not nil.
func NewServer(cert *tls.Certificate) (*Server, error) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	var opts []grpc.ServerOption
	if cert != nil {
		opts = append(opts, grpc.Creds(credentials.NewTLS(&tls.Config{Certificates: []tls.Certificate{*cert}})))
	}
	s := &Server{
		broadcastStatus: cb.Status_SUCCESS,
		listener:        lis,
		grpcServer:      grpc.NewServer(opts...),
	}
	ab.RegisterAtomicBroadcastServer(s.grpcServer, s)
	go s.grpcServer.Serve(lis)
	return s, nil
}

func (s *Server) Address() string {
	return s.listener.Addr().String()
}

func (s *Server) Stop() {
	s.grpcServer.Stop()
}

// SetBlocks replaces the chain served by Deliver.
func (s *Server) SetBlocks(blocks ...*cb.Block) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.blocks = blocks
}

// SetBroadcastResponse sets the status returned for every broadcast.
func (s *Server) SetBroadcastResponse(status cb.Status, info string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.broadcastStatus = status
	s.broadcastInfo = info
}

// Seeks returns the deliver requests received so far.
func (s *Server) Seeks() []*cb.Envelope {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]*cb.Envelope(nil), s.seeks...)
}

// Broadcasts returns the envelopes broadcast so far.
func (s *Server) Broadcasts() []*cb.Envelope {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]*cb.Envelope(nil), s.broadcasts...)
}

func (s *Server) Broadcast(stream ab.AtomicBroadcast_BroadcastServer) error {
	for {
		env, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		s.mutex.Lock()
		s.broadcasts = append(s.broadcasts, env)
		resp := &ab.BroadcastResponse{Status: s.broadcastStatus, Info: s.broadcastInfo}
		s.mutex.Unlock()

		if err := stream.Send(resp); err != nil {
			return err
		}
	}
}

func (s *Server) Deliver(stream ab.AtomicBroadcast_DeliverServer) error {
	env, err := stream.Recv()
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.seeks = append(s.seeks, env)
	blocks := s.blocks
	s.mutex.Unlock()

	block := s.seek(env, blocks)
	if block == nil {
		return stream.Send(&ab.DeliverResponse{Type: &ab.DeliverResponse_Status{Status: cb.Status_NOT_FOUND}})
	}
	if err := stream.Send(&ab.DeliverResponse{Type: &ab.DeliverResponse_Block{Block: block}}); err != nil {
		return err
	}
	return stream.Send(&ab.DeliverResponse{Type: &ab.DeliverResponse_Status{Status: cb.Status_SUCCESS}})
}

func (s *Server) seek(env *cb.Envelope, blocks []*cb.Block) *cb.Block {
	payload, err := protoutil.UnmarshalPayload(env.Payload)
	if err != nil {
		return nil
	}
	seekInfo := &ab.SeekInfo{}
	if err := proto.Unmarshal(payload.Data, seekInfo); err != nil || seekInfo.Start == nil {
		return nil
	}
	if len(blocks) == 0 {
		return nil
	}

	switch t := seekInfo.Start.Type.(type) {
	case *ab.SeekPosition_Oldest:
		return blocks[0]
	case *ab.SeekPosition_Newest:
		return blocks[len(blocks)-1]
	case *ab.SeekPosition_Specified:
		if t.Specified.Number < uint64(len(blocks)) {
			return blocks[t.Specified.Number]
		}
	}
	return nil
}

// ConfigBlock returns a block carrying config as its only transaction.
func ConfigBlock(channelID string, number uint64, config *cb.Config) *cb.Block {
	header, err := protoutil.MakePayloadHeader(protoutil.MakeChannelHeader(cb.HeaderType_CONFIG, 0, channelID, 0), nil)
	if err != nil {
		panic(err)
	}
	payload := protoutil.MarshalOrPanic(&cb.Payload{
		Header: header,
		Data:   protoutil.MarshalOrPanic(&cb.ConfigEnvelope{Config: config}),
	})
	return &cb.Block{
		Header:   &cb.BlockHeader{Number: number},
		Data:     &cb.BlockData{Data: [][]byte{protoutil.MarshalOrPanic(&cb.Envelope{Payload: payload})}},
		Metadata: LastConfigMetadata(number),
	}
}

// DataBlock returns an empty block whose metadata points at the last
// config block.
func DataBlock(number, lastConfig uint64) *cb.Block {
	return &cb.Block{
		Header:   &cb.BlockHeader{Number: number},
		Data:     &cb.BlockData{},
		Metadata: LastConfigMetadata(lastConfig),
	}
}

// LastConfigMetadata encodes the index of the last config block the way
// current orderers do.
func LastConfigMetadata(lastConfig uint64) *cb.BlockMetadata {
	return &cb.BlockMetadata{Metadata: [][]byte{
		protoutil.MarshalOrPanic(&cb.Metadata{
			Value: protoutil.MarshalOrPanic(&cb.OrdererBlockMetadata{
				LastConfig: &cb.LastConfig{Index: lastConfig},
			}),
		}),
	}}
}
