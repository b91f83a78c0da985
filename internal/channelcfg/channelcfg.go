/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package channelcfg implements the channelcfg command line: one
// sub-command per channel configuration operation.
package channelcfg

import (
	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var logger = flogging.MustGetLogger("channelcfg.cli")

var (
	cfgPath          string
	paramsFile       string
	channelName      string
	outputPath       string
	originalPath     string
	updatedPath      string
	identityFile     string
	mspID            string
	organizations    []string
	organizationsDir string
	orderingService  string
	consortium       string
)

var flags *pflag.FlagSet

func init() {
	resetFlags()
}

// resetFlags resets the values of the command line flags.
func resetFlags() {
	flags = &pflag.FlagSet{}

	flags.StringVarP(&paramsFile, "parameters", "p", "", "Path to a YAML or JSON file holding the parameters of the operation")
	flags.StringVarP(&channelName, "name", "c", "", "Name of the channel")
	flags.StringVarP(&outputPath, "path", "f", "", "Path of the file the operation writes or reads")
	flags.StringVar(&originalPath, "original", "", "Path of the original channel configuration")
	flags.StringVar(&updatedPath, "updated", "", "Path of the updated channel configuration")
	flags.StringVar(&identityFile, "identity", "", "Path of an exported identity file")
	flags.StringVar(&mspID, "msp-id", "", "MSP ID of the identity")
	flags.StringSliceVar(&organizations, "organizations", nil, "Organizations of the operation, by console name or MSP ID")
	flags.StringVar(&organizationsDir, "organizations-dir", "", "Directory holding <msp_id>/msp for every signing organization")
	flags.StringVar(&orderingService, "ordering-service", "", "Name of the ordering service in the console")
	flags.StringVar(&consortium, "consortium", "", "Consortium of a new channel")
}

func attachFlags(cmd *cobra.Command, names []string) {
	cmdFlags := cmd.Flags()
	for _, name := range names {
		if flag := flags.Lookup(name); flag != nil {
			cmdFlags.AddFlag(flag)
		} else {
			logger.Fatalf("Could not find flag '%s' to attach to command '%s'", name, cmd.Name())
		}
	}
}

// Cmd returns the channelcfg root command. A nil factory is initialized
// from the configuration when a sub-command runs.
func Cmd(cf *CmdFactory) *cobra.Command {
	mainCmd := &cobra.Command{
		Use:   "channelcfg",
		Short: "Manage Hyperledger Fabric channel configuration",
		Long: "Create channels, fetch their configuration, compute and sign configuration " +
			"updates and submit them to the ordering service. Every operation is idempotent " +
			"and prints {\"changed\": ..., \"path\": ...} on success.",
		SilenceErrors: true,
	}
	mainCmd.PersistentFlags().StringVar(&cfgPath, "config-path", "", "Directory holding channelcfg.yaml")

	mainCmd.AddCommand(createCmd(cf))
	mainCmd.AddCommand(fetchCmd(cf))
	mainCmd.AddCommand(computeUpdateCmd(cf))
	mainCmd.AddCommand(signUpdateCmd(cf))
	mainCmd.AddCommand(signUpdateOrganizationsCmd(cf))
	mainCmd.AddCommand(applyUpdateCmd(cf))
	mainCmd.AddCommand(versionCmd())

	return mainCmd
}
