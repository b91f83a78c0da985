/*
Copyright IBM Corp. 2017 All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package rest exposes the configuration transcoder and update computation
// over HTTP.
package rest

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter returns the routes of the translator service.
func NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.
		HandleFunc("/protolator/encode/{msgName}", Encode).
		Methods(http.MethodPost)

	router.
		HandleFunc("/protolator/decode/{msgName}", Decode).
		Methods(http.MethodPost)

	router.
		HandleFunc("/configtxlator/compute/update-from-configs", ComputeUpdateFromConfigs).
		Methods(http.MethodPost)

	return router
}

// NewHandler returns the router, wrapped with CORS handling when origins
// are supplied.
func NewHandler(corsOrigins []string) http.Handler {
	router := NewRouter()
	if len(corsOrigins) == 0 {
		return router
	}
	return handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(router)
}
