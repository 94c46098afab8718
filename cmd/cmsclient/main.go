package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-cms-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n%s\n", r, debug.Stack())
			os.Exit(2)
		}
	}()

	if err := rootCmd(config.New()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd(cfg config.Config) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "cmsclient",
		Short:         "Client for a multi-tenant CMS",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(cfg.GetEnv(), logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&useOfflineCache, "offline-cache", false, "Answer API calls from the offline cache when the network is down")

	cmd.AddCommand(loginCmd(cfg))
	cmd.AddCommand(logoutCmd(cfg))
	cmd.AddCommand(whoamiCmd(cfg))
	cmd.AddCommand(accountsCmd(cfg))
	cmd.AddCommand(articlesCmd(cfg))
	cmd.AddCommand(proxyCmd(cfg))
	cmd.AddCommand(cacheCmd(cfg))
	return cmd
}

func configureLogging(env, level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	if env == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
