// Command token mints a session token for a referee, for use with the API's
// session endpoint or AUTH_TOKEN in the terminal UI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/refassist/internal/auth"
	"github.com/MrJamesThe3rd/refassist/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token --user <id>",
		Short: "Mint a session token for a referee",
		Long: `Mint a signed session token for a referee.

The token is signed with AUTH_SECRET and expires after AUTH_TTL unless --ttl
is given. Pass it as a bearer token to the session endpoint, or set it as
AUTH_TOKEN for the terminal UI.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runIssue,
	}

	cmd.Flags().StringP("user", "u", "", "User id to issue the token for")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to AUTH_TTL)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runIssue(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Auth.Secret == "" {
		return errors.New("AUTH_SECRET is not set")
	}

	if ttl <= 0 {
		ttl = cfg.Auth.TTL
	}

	token, err := issue(cfg.Auth.Secret, user, ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)

	return nil
}

func issue(secret, user string, ttl time.Duration) (string, error) {
	if user == "" {
		return "", errors.New("--user is required")
	}

	return auth.NewIssuer(secret, ttl).Issue(user)
}
