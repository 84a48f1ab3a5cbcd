// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"database/sql"
	"fmt"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/smartecoq/auth"
	"github.com/danielhkuo/smartecoq/cliparse"
	"github.com/danielhkuo/smartecoq/db"
	"github.com/danielhkuo/smartecoq/queue"
	"github.com/danielhkuo/smartecoq/venue"
)

// openStore connects and makes sure the schema exists
func openStore(cfg cliparse.Config) (*sql.DB, *queue.Store, error) {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, queue.NewStore(conn, cfg.DatabaseType, cfg.CodeSalt), nil
}

func newResetCmd(config func() cliparse.Config) *cobra.Command {
	var keepStands bool

	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Wipe the database and recreate the venue stands",
		Long: `Drop every stand and reservation and recreate the schema.

SQLite files are deleted and recreated. PostgreSQL tables are dropped in
place. The stands declared in the venue file are then created again with
empty lines, unless --empty is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config()

			if cfg.DatabaseType == "sqlite" {
				if err := db.RemoveSQLiteFile(cfg.DatabaseURL); err != nil {
					return err
				}
			}
			conn, store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			if cfg.DatabaseType != "sqlite" {
				if err := db.Reset(conn); err != nil {
					return err
				}
			}

			created := 0
			if !keepStands {
				v, err := venue.Load(cfg.VenueFile)
				if err != nil {
					return err
				}
				created, err = store.EnsureStands(cmd.Context(), v.StandRequests())
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Database reset, %d stands created\n", created)
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepStands, "empty", false, "Leave the database without stands")
	return cmd
}

func newSeedCmd(config func() cliparse.Config) *cobra.Command {
	var max int
	var seed int64

	cmd := &cobra.Command{
		Use:   "seed-queues",
		Short: "Give every stand a random line for demos",
		RunE: func(cmd *cobra.Command, args []string) error {
			if max < 0 {
				return fmt.Errorf("--max must not be negative")
			}
			conn, store, err := openStore(config())
			if err != nil {
				return err
			}
			defer conn.Close()

			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			lengths, err := queue.SeedRandomQueues(cmd.Context(), store, max, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}

			stands, err := store.ListStands(cmd.Context(), "")
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tQUEUE")
			for _, st := range stands {
				fmt.Fprintf(tw, "%s\t%d\n", st.Name, lengths[st.ID])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&max, "max", 20, "Upper bound for each line (capped by stand capacity)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (default: current time)")
	return cmd
}

func newStandsCmd(config func() cliparse.Config) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "stands",
		Short: "List stands with their current line and wait",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, store, err := openStore(config())
			if err != nil {
				return err
			}
			defer conn.Close()

			stands, err := store.ListStands(cmd.Context(), kind)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tKIND\tQUEUE\tCAPACITY\tWAIT")
			for _, st := range stands {
				wait := time.Duration(st.WaitSeconds * float64(time.Second)).Round(time.Second)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					st.ID, st.Name, st.Kind, st.QueueCounter, st.MaxCapacity, wait)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Only stands of this kind (stand, toilet, ecopoint)")
	return cmd
}

func newAdminKeyCmd(config func() cliparse.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "admin-key",
		Short: "Print the X-Admin-Key for the configured salt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), auth.GenerateAdminKey(auth.AdminScope, config().AdminKeySalt))
			return nil
		},
	}
}

func newQRCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qr <stand-id>",
		Short: "Print the QR payload to display at a stand",
		Args:  cobra.ExactArgs(1),
		// No database or secrets needed
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), queue.StandQRPayload(args[0]))
			return nil
		},
	}
}
