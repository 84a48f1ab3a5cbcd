// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command ecoqctl runs operator tasks against a SmartEcoQ database:
// resetting it, seeding demo queues and inspecting stands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/smartecoq/cliparse"
)

// globalFlags mirror the server's storage flags; anything left empty
// falls back to the same environment variables the server reads.
type globalFlags struct {
	dbType    string
	dbURL     string
	venueFile string
	adminSalt string
	codeSalt  string
}

func (g globalFlags) args() []string {
	var args []string
	add := func(flag, value string) {
		if value != "" {
			args = append(args, flag, value)
		}
	}
	add("-t", g.dbType)
	add("-d", g.dbURL)
	add("-venue", g.venueFile)
	add("-admin-salt", g.adminSalt)
	add("-code-salt", g.codeSalt)
	return args
}

func newRootCmd() *cobra.Command {
	var flags globalFlags
	var cfg cliparse.Config

	root := &cobra.Command{
		Use:           "ecoqctl",
		Short:         "Operator tools for SmartEcoQ",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := cliparse.ParseFlags(flags.args())
			if err != nil {
				return fmt.Errorf("configuration: %w", err)
			}
			cfg = parsed
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&flags.dbType, "type", "t", "", "Database type: sqlite or postgres (or set DATABASE_TYPE)")
	root.PersistentFlags().StringVarP(&flags.dbURL, "database", "d", "", "SQLite file or PostgreSQL URL (or set DATABASE_URL)")
	root.PersistentFlags().StringVar(&flags.venueFile, "venue", "", "Venue description (or set VENUE_FILE)")
	root.PersistentFlags().StringVar(&flags.adminSalt, "admin-salt", "", "Admin key salt (or set ADMIN_KEY_SALT)")
	root.PersistentFlags().StringVar(&flags.codeSalt, "code-salt", "", "Reservation code salt (or set RESERVATION_CODE_SALT)")

	config := func() cliparse.Config { return cfg }
	root.AddCommand(newResetCmd(config))
	root.AddCommand(newSeedCmd(config))
	root.AddCommand(newStandsCmd(config))
	root.AddCommand(newAdminKeyCmd(config))
	root.AddCommand(newQRCmd())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
