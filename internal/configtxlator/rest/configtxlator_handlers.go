/*
Copyright IBM Corp. 2017 All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"fmt"
	"io"
	"net/http"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator/update"
	cb "github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

func fieldConfigProto(fieldName string, r *http.Request) (*cb.Config, error) {
	fileIn, _, err := r.FormFile(fieldName)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", fieldName)
	}
	defer fileIn.Close()

	configBytes, err := io.ReadAll(fileIn)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", fieldName)
	}

	config := &cb.Config{}
	err = proto.Unmarshal(configBytes, config)
	if err != nil {
		return nil, errors.Wrapf(err, "error unmarshaling %s", fieldName)
	}

	return config, nil
}

// ComputeUpdateFromConfigs computes the config update between the original
// and updated configs posted as multipart form files. The channel form field
// names the channel of the update. Identical configs get 204 No Content.
func ComputeUpdateFromConfigs(w http.ResponseWriter, r *http.Request) {
	originalConfig, err := fieldConfigProto("original", r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error with field 'original': %s\n", err)
		return
	}

	updatedConfig, err := fieldConfigProto("updated", r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error with field 'updated': %s\n", err)
		return
	}

	channelID := r.FormValue("channel")
	if channelID == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, "Error with field 'channel': channel is required")
		return
	}

	encoded, err := update.Compute(channelID, originalConfig, updatedConfig)
	if update.IsNoDifferences(err) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error computing update: %s\n", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(encoded)
}
