/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package configtree models the read set and write set of a channel
// configuration update as a pair of typed trees that are always edited
// together.
package configtree

import (
	"github.com/golang/protobuf/proto"
	cb "github.com/hyperledger/fabric-protos-go/common"
)

// Group is a node of the configuration tree holding child groups, values
// and policies.
type Group struct {
	Version   uint64
	ModPolicy string
	Groups    map[string]*Group
	Values    map[string]*Value
	Policies  map[string]*Policy
}

// Value is a leaf of the configuration tree. A nil Payload denotes an empty
// entry, which is how values appear in a read set.
type Value struct {
	Version   uint64
	ModPolicy string
	Payload   proto.Message
}

// Policy is a policy leaf of the configuration tree.
type Policy struct {
	Version   uint64
	ModPolicy string
	Policy    *cb.Policy
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{
		Groups:   map[string]*Group{},
		Values:   map[string]*Value{},
		Policies: map[string]*Policy{},
	}
}

func (g *Group) child(name string) *Group {
	c, ok := g.Groups[name]
	if !ok {
		c = NewGroup()
		g.Groups[name] = c
	}
	return c
}

// Proto converts the group into its wire form. Value payloads are marshaled
// deterministically.
func (g *Group) Proto() (*cb.ConfigGroup, error) {
	cg := &cb.ConfigGroup{
		Version:   g.Version,
		ModPolicy: g.ModPolicy,
		Groups:    make(map[string]*cb.ConfigGroup, len(g.Groups)),
		Values:    make(map[string]*cb.ConfigValue, len(g.Values)),
		Policies:  make(map[string]*cb.ConfigPolicy, len(g.Policies)),
	}
	for name, child := range g.Groups {
		c, err := child.Proto()
		if err != nil {
			return nil, err
		}
		cg.Groups[name] = c
	}
	for key, v := range g.Values {
		cv := &cb.ConfigValue{Version: v.Version, ModPolicy: v.ModPolicy}
		if v.Payload != nil {
			b, err := Marshal(v.Payload)
			if err != nil {
				return nil, err
			}
			cv.Value = b
		}
		cg.Values[key] = cv
	}
	for name, p := range g.Policies {
		cg.Policies[name] = &cb.ConfigPolicy{
			Version:   p.Version,
			ModPolicy: p.ModPolicy,
			Policy:    p.Policy,
		}
	}
	return cg, nil
}
