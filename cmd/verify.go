package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/gstin-gateway/internal/adapters/httpapi"
	"github.com/bnema/gstin-gateway/internal/application"
)

func newVerifyCmd(loader *appLoader) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "verify <gstin>",
		Short: "Verify a GSTIN once using the configured provider keys",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loader.load()
			if err != nil {
				return err
			}

			ctx, err := a.logContext(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			gw, err := a.buildGateway(ctx)
			if err != nil {
				return err
			}
			defer closeGateway(ctx, gw)

			var verification application.Verification
			lookup := func(ctx context.Context) error {
				var err error
				verification, err = gw.service.Verify(ctx, args[0])
				return err
			}

			if jsonOutput {
				err = lookup(ctx)
			} else {
				err = runWithSpinner(ctx, cmd.ErrOrStderr(), "Verifying GSTIN...", lookup)
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), httpapi.NewVerifyResponse(verification))
			}

			rendered, err := a.verificationRenderer(verification)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the verification as JSON")

	return cmd
}
