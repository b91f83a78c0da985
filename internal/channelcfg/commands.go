/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package channelcfg

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-channelcfg/internal/metadata"
	"github.com/hyperledger/fabric-channelcfg/internal/workflow"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const programName = "channelcfg"

func createCmd(cf *CmdFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(workflow.OperationCreate),
		Short: "Build the configuration update that creates a channel.",
		Long: "Builds the configuration update of a new channel from the organizations, " +
			"policies, ACLs and capabilities in the parameters file. The file at --path " +
			"is only rewritten when its content changes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, workflow.OperationCreate, cf)
		},
	}
	attachFlags(cmd, []string{"parameters", "name", "path", "organizations", "consortium"})
	return cmd
}

func fetchCmd(cf *CmdFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(workflow.OperationFetch),
		Short: "Fetch the current configuration of a channel.",
		Long:  "Fetches the last config block of the channel from the ordering service and writes its configuration to --path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, workflow.OperationFetch, cf)
		},
	}
	attachFlags(cmd, []string{"parameters", "name", "path", "identity", "msp-id", "ordering-service"})
	return cmd
}

func computeUpdateCmd(cf *CmdFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(workflow.OperationComputeUpdate),
		Short: "Compute the update between two channel configurations.",
		Long: "Computes the configuration update that turns --original into --updated. " +
			"When the configurations are the same no update is written and a stale one is removed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, workflow.OperationComputeUpdate, cf)
		},
	}
	attachFlags(cmd, []string{"parameters", "name", "path", "original", "updated"})
	return cmd
}

func signUpdateCmd(cf *CmdFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(workflow.OperationSignUpdate),
		Short: "Sign a configuration update.",
		Long:  "Adds the signature of the identity's organization to the update at --path unless it is already present.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, workflow.OperationSignUpdate, cf)
		},
	}
	attachFlags(cmd, []string{"parameters", "name", "path", "identity", "msp-id"})
	return cmd
}

func signUpdateOrganizationsCmd(cf *CmdFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(workflow.OperationSignUpdateOrganizations),
		Short: "Sign a configuration update for several organizations.",
		Long: "Signs the update at --path with the MSP directory of every listed organization, " +
			"stopping at the first failure. Organizations that already signed are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, workflow.OperationSignUpdateOrganizations, cf)
		},
	}
	attachFlags(cmd, []string{"parameters", "name", "path", "organizations", "organizations-dir"})
	return cmd
}

func applyUpdateCmd(cf *CmdFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(workflow.OperationApplyUpdate),
		Short: "Submit a signed configuration update.",
		Long:  "Submits the signed update at --path to the ordering service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, workflow.OperationApplyUpdate, cf)
		},
	}
	attachFlags(cmd, []string{"parameters", "name", "path", "identity", "msp-id", "ordering-service"})
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), metadata.GetVersionInfo(programName))
			return nil
		},
	}
}

// output is the machine readable result of an operation. Path is null when
// compute_update finds no differences.
type output struct {
	Changed bool     `json:"changed"`
	Path    *string  `json:"path"`
	Signers []string `json:"signers,omitempty"`
}

func run(cmd *cobra.Command, args []string, op workflow.Operation, cf *CmdFactory) error {
	if len(args) != 0 {
		return errors.Errorf("trailing args detected: %v", args)
	}
	// Parsing of the command line is done so silence cmd usage
	cmd.SilenceUsage = true

	var err error
	if cf == nil {
		cf, err = InitCmdFactory(cmd.Context(), cfgPath, op)
		if err != nil {
			return err
		}
	}

	params, err := buildParameters(cf.Config)
	if err != nil {
		return err
	}

	result, err := cf.Executor.Execute(cmd.Context(), op, params)
	cf.writeMetrics()
	if err != nil {
		return err
	}

	out := output{Changed: result.Changed, Signers: result.Signers}
	if result.Path != "" {
		out.Path = &result.Path
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
}
