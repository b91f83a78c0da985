/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package console

import (
	"encoding/base64"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Component types reported by the console.
const (
	TypeMSP     = "msp"
	TypeOrderer = "fabric-orderer"
)

// Organization is the MSP definition of a member organization.
type Organization struct {
	Name              string   `mapstructure:"display_name"`
	MSPID             string   `mapstructure:"msp_id"`
	RootCerts         [][]byte `mapstructure:"root_certs"`
	IntermediateCerts [][]byte `mapstructure:"intermediate_certs"`
	Admins            [][]byte `mapstructure:"admins"`
	TLSRootCerts      [][]byte `mapstructure:"tls_root_certs"`
}

// OrderingServiceNode describes one node of an ordering service.
type OrderingServiceNode struct {
	Name          string `mapstructure:"display_name"`
	APIURL        string `mapstructure:"api_url"`
	MSPID         string `mapstructure:"msp_id"`
	TLSCert       []byte `mapstructure:"tls_cert"`
	ClientTLSCert []byte `mapstructure:"client_tls_cert"`
	ServerTLSCert []byte `mapstructure:"server_tls_cert"`
	TLSCARootCert []byte `mapstructure:"tls_ca_root_cert"`
	ClusterName   string `mapstructure:"cluster_name"`
}

// Address returns the host:port the node serves gRPC on. The port defaults
// to 443 when the API URL has none.
func (n *OrderingServiceNode) Address() (string, error) {
	u, err := url.Parse(n.APIURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid API URL %s of ordering service node %s", n.APIURL, n.Name)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", errors.Errorf("API URL %s of ordering service node %s has no host", n.APIURL, n.Name)
	}
	port := u.Port()
	if port == "" {
		port = "443"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return "", errors.Errorf("API URL %s of ordering service node %s has an invalid port", n.APIURL, n.Name)
	}
	return net.JoinHostPort(host, port), nil
}

// base64BytesHook decodes the base64 encoded PEM strings used by the
// console into byte slices.
func base64BytesHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]byte(nil)) {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return []byte(nil), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "value is not base64 encoded")
	}
	return decoded, nil
}

func decode(input interface{}, output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       base64BytesHook,
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	return decoder.Decode(normalize(input))
}

// normalize converts the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]interface{}.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
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
	}
	return v
}
