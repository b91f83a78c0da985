/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package configdiff compares configuration artifacts by their decoded
// content rather than by their bytes.
package configdiff

import (
	"encoding/json"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/hyperledger/fabric-channelcfg/internal/configtxlator"
	"github.com/hyperledger/fabric-channelcfg/internal/fileutil"
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

var logger = flogging.MustGetLogger("channelcfg.configdiff")

// decode returns the deep JSON tree of a message as generic values so that
// map ordering and the encoding of nested opaque fields do not matter.
func decode(kind configtxlator.MessageKind, data []byte) (interface{}, error) {
	doc, err := configtxlator.ToJSON(kind, data)
	if err != nil {
		return nil, err
	}

	var tree interface{}
	if err := json.Unmarshal(doc, &tree); err != nil {
		return nil, errors.Wrapf(err, "error parsing JSON form of %s", kind)
	}
	return tree, nil
}

func decodeBoth(kind configtxlator.MessageKind, a, b []byte) (interface{}, interface{}, error) {
	treeA, err := decode(kind, a)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "first message")
	}
	treeB, err := decode(kind, b)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "second message")
	}
	return treeA, treeB, nil
}

// Equal reports whether two encoded messages carry the same content. Absent
// and empty collections are considered equal.
func Equal(kind configtxlator.MessageKind, a, b []byte) (bool, error) {
	treeA, treeB, err := decodeBoth(kind, a, b)
	if err != nil {
		return false, err
	}
	return cmp.Equal(treeA, treeB, cmpopts.EquateEmpty()), nil
}

// Diff returns a human readable description of the differences between two
// encoded messages, or the empty string when they are equal.
func Diff(kind configtxlator.MessageKind, a, b []byte) (string, error) {
	treeA, treeB, err := decodeBoth(kind, a, b)
	if err != nil {
		return "", err
	}
	return cmp.Diff(treeA, treeB, cmpopts.EquateEmpty()), nil
}

// Changed reports whether next differs from the message persisted at path.
// A missing, unreadable, or undecodable file always counts as changed.
func Changed(kind configtxlator.MessageKind, path string, next []byte) bool {
	previous, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Debugf("Treating %s as changed: %s", path, err)
		}
		return true
	}

	equal, err := Equal(kind, previous, next)
	if err != nil {
		logger.Debugf("Treating %s as changed: %s", path, err)
		return true
	}
	if !equal && logger.IsEnabledFor(zapcore.DebugLevel) {
		if d, err := Diff(kind, previous, next); err == nil {
			logger.Debugf("Content of %s changed:\n%s", path, d)
		}
	}
	return !equal
}

// WriteIfChanged atomically replaces the file at path with next unless the
// file already holds an equivalent message.
func WriteIfChanged(kind configtxlator.MessageKind, path string, next []byte) (bool, error) {
	if !Changed(kind, path, next) {
		logger.Debugf("Content of %s is unchanged", path)
		return false, nil
	}
	if err := fileutil.WriteFileAtomic(path, next, 0o644); err != nil {
		return false, errors.WithMessagef(err, "failed to write %s", path)
	}
	return true, nil
}
