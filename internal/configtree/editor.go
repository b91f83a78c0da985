/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package configtree

import (
	"github.com/golang/protobuf/proto"
	cb "github.com/hyperledger/fabric-protos-go/common"
)

// Editor is a cursor over the same path of the read set and the write set.
// Navigating to a group creates it on both sides, so every node placed in
// the write set has its ancestors in the read set.
type Editor struct {
	path  []string
	read  *Group
	write *Group
}

// Group descends into the named child group.
func (e *Editor) Group(name string) *Editor {
	return &Editor{
		path:  append(append([]string{}, e.path...), name),
		read:  e.read.child(name),
		write: e.write.child(name),
	}
}

// Path returns the group names from the channel group down to the editor.
func (e *Editor) Path() []string {
	return append([]string{}, e.path...)
}

// Replace sets the version and mod policy of the write-side group.
func (e *Editor) Replace(version uint64, modPolicy string) *Editor {
	e.write.Version = version
	e.write.ModPolicy = modPolicy
	return e
}

// ModifyValue records a modification of an existing value: the read set
// expects it at prior and the write set carries payload at prior+1.
func (e *Editor) ModifyValue(key, modPolicy string, payload proto.Message, prior uint64) *Editor {
	e.read.Values[key] = &Value{Version: prior}
	e.write.Values[key] = &Value{Version: prior + 1, ModPolicy: modPolicy, Payload: payload}
	return e
}

// AddValue places a new value in the write set only.
func (e *Editor) AddValue(key, modPolicy string, payload proto.Message) *Editor {
	e.write.Values[key] = &Value{ModPolicy: modPolicy, Payload: payload}
	return e
}

// PinValue asserts an unchanged value: both sets reference it at version 0
// and the write set repeats its payload.
func (e *Editor) PinValue(key string, payload proto.Message) *Editor {
	e.read.Values[key] = &Value{}
	e.write.Values[key] = &Value{Payload: payload}
	return e
}

// SetPolicy places a new policy in the write set only.
func (e *Editor) SetPolicy(name, modPolicy string, policy *cb.Policy) *Editor {
	e.write.Policies[name] = &Policy{ModPolicy: modPolicy, Policy: policy}
	return e
}

// Value returns the write-side value stored under key, or nil.
func (e *Editor) Value(key string) *Value {
	return e.write.Values[key]
}

// Policy returns the write-side policy stored under name, or nil.
func (e *Editor) Policy(name string) *Policy {
	return e.write.Policies[name]
}
