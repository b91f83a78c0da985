/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator/rest"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator/update"
	"github.com/hyperledger/fabric-channelcfg/internal/metadata"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	cb "github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
	"gopkg.in/alecthomas/kingpin.v2"
)

// command line flags
var (
	app = kingpin.New("cfgtranslator", "Utility for translating Hyperledger Fabric channel configuration artifacts")

	start    = app.Command("start", "Start the translation REST server")
	hostname = start.Flag("hostname", "The hostname or IP on which the REST server will listen").Default("0.0.0.0").String()
	port     = start.Flag("port", "The port on which the REST server will listen").Default("7059").Int()
	cors     = start.Flag("CORS", "Allowable CORS domains, e.g. '*' or 'www.example.com' (may be repeated).").Strings()

	protoEncode       = app.Command("proto_encode", "Converts a JSON document to protobuf.")
	protoEncodeType   = protoEncode.Flag("type", "The type of protobuf structure to encode to.  For example, 'common.Config'.").Required().String()
	protoEncodeSource = protoEncode.Flag("input", "A file containing the JSON document.").Default(os.Stdin.Name()).File()
	protoEncodeDest   = protoEncode.Flag("output", "A file to write the output to.").Default(os.Stdout.Name()).OpenFile(os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)

	protoDecode       = app.Command("proto_decode", "Converts a proto message to JSON.")
	protoDecodeType   = protoDecode.Flag("type", "The type of protobuf structure to decode from.  For example, 'common.Config'.").Required().String()
	protoDecodeSource = protoDecode.Flag("input", "A file containing the proto message.").Default(os.Stdin.Name()).File()
	protoDecodeDest   = protoDecode.Flag("output", "A file to write the JSON document to.").Default(os.Stdout.Name()).OpenFile(os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)

	computeUpdate          = app.Command("compute_update", "Takes two marshaled common.Config messages and computes the config update which transitions between the two.")
	computeUpdateOriginal  = computeUpdate.Flag("original", "The original config message.").File()
	computeUpdateUpdated   = computeUpdate.Flag("updated", "The updated config message.").File()
	computeUpdateChannelID = computeUpdate.Flag("channel_id", "The name of the channel for this update.").Required().String()
	computeUpdateDest      = computeUpdate.Flag("output", "A file to write the update to.").Default(os.Stdout.Name()).OpenFile(os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)

	version = app.Command("version", "Show version information")
)

var logger = flogging.MustGetLogger("channelcfg.cfgtranslator")

func main() {
	kingpin.Version("0.0.1")
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case start.FullCommand():
		startServer(fmt.Sprintf("%s:%d", *hostname, *port), *cors)
	case protoEncode.FullCommand():
		defer (*protoEncodeSource).Close()
		defer (*protoEncodeDest).Close()
		if err := encodeProto(*protoEncodeType, *protoEncodeSource, *protoEncodeDest); err != nil {
			app.Fatalf("Error encoding: %s", err)
		}
	case protoDecode.FullCommand():
		defer (*protoDecodeSource).Close()
		defer (*protoDecodeDest).Close()
		if err := decodeProto(*protoDecodeType, *protoDecodeSource, *protoDecodeDest); err != nil {
			app.Fatalf("Error decoding: %s", err)
		}
	case computeUpdate.FullCommand():
		if *computeUpdateOriginal == nil || *computeUpdateUpdated == nil {
			app.Fatalf("Error computing update: both --original and --updated are required")
		}
		defer (*computeUpdateOriginal).Close()
		defer (*computeUpdateUpdated).Close()
		defer (*computeUpdateDest).Close()
		if err := computeUpdt(*computeUpdateOriginal, *computeUpdateUpdated, *computeUpdateDest, *computeUpdateChannelID); err != nil {
			app.Fatalf("Error computing update: %s", err)
		}
	case version.FullCommand():
		fmt.Println(metadata.GetVersionInfo("cfgtranslator"))
	}
}

func startServer(address string, cors []string) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		app.Fatalf("Could not bind to address '%s': %s", address, err)
	}

	if len(cors) > 0 {
		logger.Infof("Serving HTTP requests on %s with CORS %v", listener.Addr(), cors)
	} else {
		logger.Infof("Serving HTTP requests on %s", listener.Addr())
	}
	err = http.Serve(listener, rest.NewHandler(cors))

	app.Fatalf("Error starting server:[%s]\n", err)
}

func encodeProto(msgName string, input io.Reader, output io.Writer) error {
	kind, err := configtxlator.ParseMessageKind(msgName)
	if err != nil {
		return err
	}

	in, err := io.ReadAll(input)
	if err != nil {
		return errors.Wrap(err, "error reading input")
	}

	out, err := configtxlator.FromJSON(kind, in)
	if err != nil {
		return err
	}

	_, err = output.Write(out)
	return errors.Wrap(err, "error writing output")
}

func decodeProto(msgName string, input io.Reader, output io.Writer) error {
	kind, err := configtxlator.ParseMessageKind(msgName)
	if err != nil {
		return err
	}

	in, err := io.ReadAll(input)
	if err != nil {
		return errors.Wrap(err, "error reading input")
	}

	out, err := configtxlator.ToJSON(kind, in)
	if err != nil {
		return err
	}

	_, err = output.Write(out)
	return errors.Wrap(err, "error writing output")
}

func readConfig(input io.Reader) (*cb.Config, error) {
	in, err := io.ReadAll(input)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config")
	}

	config := &cb.Config{}
	if err := proto.Unmarshal(in, config); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling config")
	}
	return config, nil
}

func computeUpdt(original, updated io.Reader, output io.Writer, channelID string) error {
	origConf, err := readConfig(original)
	if err != nil {
		return errors.WithMessage(err, "original")
	}

	updtConf, err := readConfig(updated)
	if err != nil {
		return errors.WithMessage(err, "updated")
	}

	out, err := update.Compute(channelID, origConf, updtConf)
	if err != nil {
		return err
	}

	_, err = output.Write(out)
	return errors.Wrap(err, "error writing output")
}
