/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package configbuilder

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"

	"github.com/hyperledger/fabric-config/protolator"
	cb "github.com/hyperledger/fabric-protos-go/common"
	"github.com/pkg/errors"
)

// ResolvePolicies turns policy sources into policies. A source is either the
// path of a JSON policy document or the document itself, decoded from a
// parameters file. Every policy must resolve before any tree is built.
func ResolvePolicies(sources map[string]interface{}) (map[string]*cb.Policy, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	policies := make(map[string]*cb.Policy, len(sources))
	for _, name := range names {
		p, err := resolvePolicy(sources[name])
		if err != nil {
			return nil, errors.WithMessagef(err, "the policy %s is invalid", name)
		}
		policies[name] = p
	}
	return policies, nil
}

func resolvePolicy(source interface{}) (*cb.Policy, error) {
	var doc []byte
	switch s := source.(type) {
	case nil:
		return nil, errors.New("no policy supplied")
	case string:
		data, err := os.ReadFile(s)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read policy file %s", s)
		}
		doc = data
	case []byte:
		doc = s
	case *cb.Policy:
		return s, nil
	default:
		data, err := json.Marshal(normalize(s))
		if err != nil {
			return nil, errors.Wrap(err, "cannot encode inline policy")
		}
		doc = data
	}

	policy := &cb.Policy{}
	if err := protolator.DeepUnmarshalJSON(bytes.NewReader(doc), policy); err != nil {
		return nil, errors.Wrap(err, "cannot decode policy")
	}
	if policy.Type == int32(cb.Policy_UNKNOWN) {
		return nil, errors.New("policy type is not set")
	}
	return policy, nil
}

// normalize converts the map[interface{}]interface{} values produced by YAML
// decoding into JSON-encodable maps.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				m[ks] = normalize(val)
			}
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, val := range t {
			s[i] = normalize(val)
		}
		return s
	default:
		return v
	}
}
