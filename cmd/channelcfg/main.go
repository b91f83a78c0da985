/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperledger/fabric-channelcfg/internal/channelcfg"
	"github.com/hyperledger/fabric-channelcfg/internal/workflow"
)

// Exit codes. Retryable failures get their own code so that callers can
// run the operation again.
const (
	exitFailure   = 1
	exitRetryable = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := channelcfg.Cmd(nil).ExecuteContext(ctx)
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	stop()
	if workflow.IsRetryable(err) {
		os.Exit(exitRetryable)
	}
	os.Exit(exitFailure)
}
