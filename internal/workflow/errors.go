/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package workflow

import (
	"context"
	"fmt"
	"net"

	"github.com/hyperledger/fabric-channelcfg/internal/pkg/toolchain"
	"github.com/pkg/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies workflow failures.
type Kind int

const (
	// KindInternal is any failure that was not classified.
	KindInternal Kind = iota
	// KindValidation is an invalid or unresolvable input. It is reported
	// before any external call is made.
	KindValidation
	// KindTransient is a connection, timeout or tool failure. The operation
	// can be run again.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// Error is the error returned by Execute.
type Error struct {
	Kind Kind
	Op   Operation
	Err  error
	// Trace holds the states entered before the failure.
	Trace []State
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s failed: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Cause lets errors.Cause see through the workflow error.
func (e *Error) Cause() error { return e.Err }

// IsRetryable reports whether err is a transient workflow failure.
func IsRetryable(err error) bool {
	var werr *Error
	return errors.As(err, &werr) && werr.Kind == KindTransient
}

func invalidOperation(op Operation) error {
	return errors.Errorf("invalid operation %q", op)
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindValidation, Err: err}
}

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindTransient, Err: err}
}

// resolution failures caused by the network are transient, anything else
// means the reference itself is bad.
func unresolved(err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return transient(err)
	}
	return invalid(err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var exitErr *toolchain.ExitError
	if errors.As(err, &exitErr) {
		return true
	}
	// console 5xx responses and SERVICE_UNAVAILABLE from the orderer
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) && temp.Temporary() {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted:
			return true
		}
	}
	return false
}

// classify wraps err into an *Error for op, keeping the kind of an error
// that was already classified.
func classify(op Operation, err error) *Error {
	var werr *Error
	if errors.As(err, &werr) {
		if err == error(werr) {
			err = werr.Err
		}
		return &Error{Kind: werr.Kind, Op: op, Err: err}
	}
	kind := KindInternal
	if isTransient(err) {
		kind = KindTransient
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
