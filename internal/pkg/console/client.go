/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package console resolves organizations and ordering services from an
// operations console, or from inline descriptors.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("channelcfg.console")

const (
	AuthTypeBasic    = "basic"
	AuthTypeIBMCloud = "ibmcloud"

	DefaultTimeout       = 60 * time.Second
	DefaultTokenEndpoint = "https://iam.cloud.ibm.com/identity/token"

	componentsPath = "/ak/api/v2/components?deployment_attrs=included&cache=skip"
)

//go:generate counterfeiter -o mock/resolver.go --fake-name Resolver . Resolver

// Resolver turns references into descriptors. A reference is either the
// display name of a console component or an inline descriptor.
type Resolver interface {
	Organization(ctx context.Context, ref interface{}) (*Organization, error)
	OrderingService(ctx context.Context, ref interface{}) ([]*OrderingServiceNode, error)
	OrderingServiceNode(ctx context.Context, ref interface{}) (*OrderingServiceNode, error)
}

// Config holds the console connection parameters.
type Config struct {
	Endpoint      string        `mapstructure:"api_endpoint"`
	AuthType      string        `mapstructure:"api_authtype"`
	APIKey        string        `mapstructure:"api_key"`
	APISecret     string        `mapstructure:"api_secret"`
	TokenEndpoint string        `mapstructure:"api_token_endpoint"`
	Timeout       time.Duration `mapstructure:"api_timeout"`
}

// Validate checks that the parameters needed by the auth type are present.
func (c Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("api_endpoint is required")
	case c.APIKey == "":
		return errors.New("api_key is required")
	}
	switch c.AuthType {
	case AuthTypeBasic:
		if c.APISecret == "" {
			return errors.New("api_secret is required when api_authtype is basic")
		}
	case AuthTypeIBMCloud:
	case "":
		return errors.New("api_authtype is required")
	default:
		return errors.Errorf("unsupported api_authtype %q", c.AuthType)
	}
	return nil
}

// Client talks to the console REST API. Components are fetched once and
// cached for the lifetime of the client.
type Client struct {
	config     Config
	httpClient *http.Client

	mutex      sync.Mutex
	components []map[string]interface{}
	token      string
}

// NewClient validates config and returns a client for it.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.TokenEndpoint == "" {
		config.TokenEndpoint = DefaultTokenEndpoint
	}
	config.Endpoint = strings.TrimRight(config.Endpoint, "/")
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

func (c *Client) Organization(ctx context.Context, ref interface{}) (*Organization, error) {
	if name, ok := ref.(string); ok {
		component, err := c.findComponent(ctx, TypeMSP, "display_name", name)
		if err != nil {
			return nil, errors.WithMessagef(err, "organization %s", name)
		}
		ref = component
	}
	org := &Organization{}
	if err := decode(ref, org); err != nil {
		return nil, errors.WithMessage(err, "invalid organization")
	}
	if org.MSPID == "" {
		return nil, errors.Errorf("organization %s has no MSP ID", org.Name)
	}
	return org, nil
}

func (c *Client) OrderingServiceNode(ctx context.Context, ref interface{}) (*OrderingServiceNode, error) {
	if name, ok := ref.(string); ok {
		component, err := c.findComponent(ctx, TypeOrderer, "display_name", name)
		if err != nil {
			return nil, errors.WithMessagef(err, "ordering service node %s", name)
		}
		ref = component
	}
	node := &OrderingServiceNode{}
	if err := decode(ref, node); err != nil {
		return nil, errors.WithMessage(err, "invalid ordering service node")
	}
	if node.APIURL == "" {
		return nil, errors.Errorf("ordering service node %s has no API URL", node.Name)
	}
	return node, nil
}

// OrderingService resolves every node of an ordering service. The
// reference is the cluster name or a list of node references.
func (c *Client) OrderingService(ctx context.Context, ref interface{}) ([]*OrderingServiceNode, error) {
	var refs []interface{}
	switch t := ref.(type) {
	case string:
		components, err := c.listComponents(ctx)
		if err != nil {
			return nil, err
		}
		for _, component := range components {
			if component["type"] == TypeOrderer && component["cluster_name"] == t {
				refs = append(refs, component)
			}
		}
		if len(refs) == 0 {
			return nil, errors.Errorf("ordering service %s not found", t)
		}
	case []interface{}:
		refs = t
	case []string:
		for _, name := range t {
			refs = append(refs, name)
		}
	default:
		return nil, errors.Errorf("invalid ordering service reference of type %T", ref)
	}

	nodes := make([]*OrderingServiceNode, 0, len(refs))
	for _, r := range refs {
		node, err := c.OrderingServiceNode(ctx, r)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (c *Client) findComponent(ctx context.Context, componentType, field, value string) (map[string]interface{}, error) {
	components, err := c.listComponents(ctx)
	if err != nil {
		return nil, err
	}
	for _, component := range components {
		if component["type"] == componentType && component[field] == value {
			return component, nil
		}
	}
	return nil, errors.Errorf("no %s component named %s", componentType, value)
}

func (c *Client) listComponents(ctx context.Context) ([]map[string]interface{}, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.components != nil {
		return c.components, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+componentsPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	var components []map[string]interface{}
	if err := c.do(req, &components); err != nil {
		return nil, errors.WithMessage(err, "failed to list console components")
	}
	logger.Debugf("Retrieved %d components from %s", len(components), c.config.Endpoint)
	c.components = components
	return components, nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.config.AuthType == AuthTypeBasic {
		req.SetBasicAuth(c.config.APIKey, c.config.APISecret)
		return nil
	}
	if c.token == "" {
		token, err := c.fetchToken(ctx)
		if err != nil {
			return err
		}
		c.token = token
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"urn:ibm:params:oauth:grant-type:apikey"},
		"apikey":     {c.config.APIKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "failed to create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", errors.WithMessage(err, "failed to obtain access token")
	}
	if resp.AccessToken == "" {
		return "", errors.New("failed to obtain access token: no token in response")
	}
	return resp.AccessToken, nil
}

// StatusError is a console response with an unexpected HTTP status.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s returned status %d: %s", e.Path, e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed when repeated.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", req.URL.Redacted())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Path: req.URL.Path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return errors.Wrap(json.Unmarshal(body, out), "failed to decode response")
}
