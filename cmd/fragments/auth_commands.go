package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fragments/internal/auth"
	"fragments/internal/services"
)

func newAuthCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newLoginCommand(ctx),
		newLogoutCommand(ctx),
		newWhoamiCommand(ctx),
	}
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var token, username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the fragments service",
		Long: "Sign in with an identity provider ID token (bearer mode) or a username and\n" +
			"password (basic mode). FRAGMENTS_ID_TOKEN is used when --token is omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(token) == "" {
				token = os.Getenv("FRAGMENTS_ID_TOKEN")
			}
			return ctx.withProvider(func(p *auth.FileProvider) error {
				user, err := p.SignIn(cmd.Context(), auth.Credentials{
					IDToken:  token,
					Username: username,
					Password: password,
				})
				if err != nil {
					return services.Wrap(services.ErrAuthentication, "login", "", err)
				}
				printf(cmd, "Signed in as %s\n", displayName(user))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "ID token issued by the identity provider")
	cmd.Flags().StringVarP(&username, "user", "u", "", "Username (basic mode)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (basic mode)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProvider(func(p *auth.FileProvider) error {
				if err := p.SignOut(cmd.Context()); err != nil {
					return err
				}
				printf(cmd, "Signed out\n")
				return nil
			})
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProvider(func(p *auth.FileProvider) error {
				user, err := p.GetUser(cmd.Context())
				if err != nil {
					return err
				}
				if user == nil {
					printf(cmd, "Not signed in\n")
					return nil
				}
				printf(cmd, "Signed in as %s\n", displayName(user))
				if token, ok := user.(*auth.TokenUser); ok && !token.ExpiresAt().IsZero() {
					printf(cmd, "Session expires %s\n", token.ExpiresAt().Local().Format(time.RFC1123))
				}
				return nil
			})
		},
	}
}

func displayName(user auth.User) string {
	if name := strings.TrimSpace(user.Username()); name != "" {
		return name
	}
	return "(unnamed user)"
}
