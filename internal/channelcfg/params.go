/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channelcfg

import (
	"github.com/hyperledger/fabric-channelcfg/internal/pkg/config"
	"github.com/hyperledger/fabric-channelcfg/internal/workflow"
	"github.com/pkg/errors"
)

// buildParameters reads the parameters file, applies the command line flags
// on top of it and fills the gaps from the configuration.
func buildParameters(cfg *config.Config) (*workflow.Parameters, error) {
	params := &workflow.Parameters{}
	if paramsFile != "" {
		raw, err := config.ReadParameters(paramsFile)
		if err != nil {
			return nil, err
		}
		if err := config.Decode(raw, params); err != nil {
			return nil, errors.WithMessagef(err, "invalid parameters file %s", paramsFile)
		}
	}

	override(&params.Name, channelName)
	override(&params.Path, outputPath)
	override(&params.Original, originalPath)
	override(&params.Updated, updatedPath)
	override(&params.MSPID, mspID)
	override(&params.OrganizationsDir, organizationsDir)
	override(&params.Consortium, consortium)
	if identityFile != "" {
		params.Identity = identityFile
	}
	if orderingService != "" {
		params.OrderingService = orderingService
		params.OrderingServiceNodes = nil
	}
	if len(organizations) != 0 {
		params.Organizations = make([]interface{}, 0, len(organizations))
		for _, org := range organizations {
			params.Organizations = append(params.Organizations, org)
		}
	}

	if cfg == nil {
		return params, nil
	}
	c := &params.Console
	setString(&c.Endpoint, cfg.Console.Endpoint)
	setString(&c.AuthType, cfg.Console.AuthType)
	setString(&c.APIKey, cfg.Console.APIKey)
	setString(&c.APISecret, cfg.Console.APISecret)
	setString(&c.TokenEndpoint, cfg.Console.TokenEndpoint)
	if c.Timeout == 0 {
		c.Timeout = cfg.Console.Timeout
	}
	if params.TLSHandshakeTimeShift == 0 {
		params.TLSHandshakeTimeShift = cfg.TLSHandshakeTimeShift
	}
	setString(&params.OrganizationsDir, cfg.OrganizationsDir)
	return params, nil
}

// override sets *dst to value unless value is empty.
func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// setString fills *dst with value when *dst is empty.
func setString(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}
