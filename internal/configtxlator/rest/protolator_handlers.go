/*
Copyright IBM Corp. 2017 All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator"
)

func getMsgKind(r *http.Request) (configtxlator.MessageKind, error) {
	return configtxlator.ParseMessageKind(mux.Vars(r)["msgName"])
}

// Decode converts the wire form of a message posted in the request body to
// deep JSON.
func Decode(w http.ResponseWriter, r *http.Request) {
	kind, err := getMsgKind(r)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, err)
		return
	}

	buf, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, err)
		return
	}

	out, err := configtxlator.ToJSON(kind, buf)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// Encode converts the deep JSON posted in the request body to the wire form
// of a message.
func Encode(w http.ResponseWriter, r *http.Request) {
	kind, err := getMsgKind(r)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, err)
		return
	}

	buf, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, err)
		return
	}

	data, err := configtxlator.FromJSON(kind, buf)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
