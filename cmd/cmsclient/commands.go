package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/jrsteele09/go-cms-client/auth"
	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/internal/utils"
	"github.com/jrsteele09/go-cms-client/tenants"
	"github.com/spf13/cobra"
)

func loginCmd(cfg config.Config) *cobra.Command {
	var creds auth.LoginCredentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Password == "" {
				creds.Password = os.Getenv("CMS_PASSWORD")
			}
			return withApp(cmd.Context(), cfg, func(a *app) error {
				user, err := a.auth.Login(cmd.Context(), creds)
				if err != nil {
					return err
				}
				accounts, err := a.accounts().FetchUserAccounts(cmd.Context())
				if err != nil {
					return err
				}
				if a.tenant.CurrentAccount() == nil && len(accounts) > 0 {
					if _, err := a.tenant.SwitchAccount(accounts[0].ID); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%d accounts)\n", user.Email, len(accounts))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password (defaults to $CMS_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session and account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(a *app) error {
				return a.auth.Logout()
			})
		},
	}
}

func whoamiCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user and current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(a *app) error {
				user := a.auth.User()
				if !a.auth.IsAuthenticated() || user == nil {
					return errors.ErrNotAuthenticated
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "User:    %s <%s>\n", user.Username, user.Email)
				if account := a.tenant.CurrentAccount(); account != nil {
					fmt.Fprintf(out, "Account: %s (%s)\n", account.Name, account.ID)
				}
				if role, ok := a.tenant.Role(); ok {
					fmt.Fprintf(out, "Role:    %s\n", role)
				}
				return nil
			})
		},
	}
}

func accountsCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List and switch accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the accounts you belong to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(a *app) error {
				accounts, err := a.accounts().FetchUserAccounts(cmd.Context())
				if err != nil {
					return err
				}
				current := a.tenant.CurrentAccountID()
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "\tID\tNAME\tSLUG")
				for _, acct := range accounts {
					marker := ""
					if acct.ID == current {
						marker = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, acct.ID, acct.Name, acct.Slug)
				}
				return tw.Flush()
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "switch <account-id>",
		Short: "Make an account the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(a *app) error {
				accounts := a.accounts()
				if _, err := accounts.FetchUserAccounts(cmd.Context()); err != nil {
					return err
				}
				acct, err := accounts.Switch(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s\n", acct.Name)
				return nil
			})
		},
	})

	var name, slug, description string
	update := &cobra.Command{
		Use:   "update",
		Short: "Rename or describe the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			upd := tenants.AccountUpdate{
				Name:        utils.NonZero(name),
				Slug:        utils.NonZero(slug),
				Description: utils.NonZero(description),
			}
			return withApp(cmd.Context(), cfg, func(a *app) error {
				acct, err := a.accounts().Update(cmd.Context(), upd)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (%s)\n", acct.Name, acct.Slug)
				return nil
			})
		},
	}
	update.Flags().StringVar(&name, "name", "", "New account name")
	update.Flags().StringVar(&slug, "slug", "", "New account slug")
	update.Flags().StringVar(&description, "description", "", "New description")
	cmd.AddCommand(update)
	return cmd
}

func articlesCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Read articles of the current account",
	}

	var page int
	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := url.Values{}
			if page > 1 {
				params.Set("page", strconv.Itoa(page))
			}
			if search != "" {
				params.Set("search", search)
			}
			return withApp(cmd.Context(), cfg, func(a *app) error {
				result, err := a.articles().Fetch(cmd.Context(), params)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "SLUG\tSTATUS\tTITLE")
				for _, article := range result.Results {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", article.Slug, article.Status, article.Title)
				}
				fmt.Fprintf(tw, "\n%d total\n", result.Count)
				return tw.Flush()
			})
		},
	}
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().StringVar(&search, "search", "", "Search text")
	cmd.AddCommand(list)

	var accountSlug string
	get := &cobra.Command{
		Use:   "get <slug>",
		Short: "Print one article as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg, func(a *app) error {
				article, err := a.articles().Get(cmd.Context(), args[0], accountSlug)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(article)
			})
		},
	}
	get.Flags().StringVar(&accountSlug, "account", "", "Public account slug to read from")
	cmd.AddCommand(get)
	return cmd
}
