package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gstgw",
		Short:         "GSTIN verification gateway (gstgw): serve, verify and manage provider keys",
		Long:          "gstgw fronts the KnowYourGST lookup API with a rotating pool of provider keys, per-key cooldowns and a result cache. It runs the HTTP gateway, verifies GSTINs from the terminal and manages the credentials file.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	loader := &appLoader{}
	rootCmd.PersistentFlags().StringVar(&loader.configFile, "config", "", "path to a TOML config file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(loader),
		newVerifyCmd(loader),
		newKeysCmd(loader),
	)

	return rootCmd
}
