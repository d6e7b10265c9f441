package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/gstin-gateway/internal/adapters/httpapi"
	"github.com/bnema/gstin-gateway/internal/adapters/render/keystate"
	"github.com/bnema/gstin-gateway/internal/application"
)

const (
	keyStatePath    = "/internal/key-state"
	keyStateTimeout = 10 * time.Second
)

func newKeysCmd(loader *appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider credentials",
	}

	cmd.AddCommand(
		newKeysListCmd(loader),
		newKeysAddCmd(loader),
		newKeysStatusCmd(loader),
	)

	return cmd
}

func newKeysListCmd(loader *appLoader) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured credentials in attempt order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loader.load()
			if err != nil {
				return err
			}

			credentials, err := a.credentials.List(cmd.Context(), a.cfg.Keys)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), credentials)
			}
			return writeCredentialTable(cmd.OutOrStdout(), a.credentialsPath, credentials)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print credentials as JSON")

	return cmd
}

func writeCredentialTable(out io.Writer, path string, credentials []application.ConfiguredCredential) error {
	if _, err := fmt.Fprintf(out, "credentials file: %s\n", path); err != nil {
		return err
	}
	if len(credentials) == 0 {
		_, err := fmt.Fprintln(out, "no credentials configured")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tSOURCE\tKEY\tSTATE")
	for _, c := range credentials {
		key := c.Prefix
		if c.SecretRef != "" {
			key = "ref:" + c.SecretRef
		}
		state := "enabled"
		if c.Disabled {
			state = "disabled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Label, c.Source, key, state)
	}
	return tw.Flush()
}

func newKeysAddCmd(loader *appLoader) *cobra.Command {
	var command application.AddCredentialCommand

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a credential to the credentials file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loader.load()
			if err != nil {
				return err
			}

			entry, err := a.credentials.Add(cmd.Context(), command)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added credential %q to %s\n", entry.Label, a.credentialsPath)
			return err
		},
	}

	cmd.Flags().StringVar(&command.Label, "label", "", "unique credential label")
	cmd.Flags().StringVar(&command.Token, "token", "", "provider key stored inline")
	cmd.Flags().StringVar(&command.SecretRef, "secret-ref", "", "secret reference resolved through pass or the secrets directory")
	_ = cmd.MarkFlagRequired("label")
	cmd.MarkFlagsMutuallyExclusive("token", "secret-ref")
	cmd.MarkFlagsOneRequired("token", "secret-ref")

	return cmd
}

func newKeysStatusCmd(loader *appLoader) *cobra.Command {
	var (
		server     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show live cooldown state from a running gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loader.load()
			if err != nil {
				return err
			}

			if server == "" {
				server = fmt.Sprintf("http://localhost:%d", a.cfg.Port)
			}

			state, err := a.fetchKeyState(cmd.Context(), server)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), state)
			}

			rendered, err := a.keyStateRenderer(state.Report(), keystate.RenderOptions{Cooldown: a.cfg.KeyCooldown})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "gateway base URL (default http://localhost:<PORT>)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the raw key state as JSON")

	return cmd
}

func (a *app) fetchKeyState(ctx context.Context, server string) (httpapi.KeyStateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, keyStateTimeout)
	defer cancel()

	endpoint := strings.TrimRight(server, "/") + keyStatePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return httpapi.KeyStateResponse{}, fmt.Errorf("build key state request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return httpapi.KeyStateResponse{}, fmt.Errorf("fetch key state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpapi.KeyStateResponse{}, fmt.Errorf("fetch key state: %s returned %s", endpoint, resp.Status)
	}

	var state httpapi.KeyStateResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&state); err != nil {
		return httpapi.KeyStateResponse{}, fmt.Errorf("decode key state: %w", err)
	}
	return state, nil
}

func writeJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
