package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/chorestore/internal/database"
	"github.com/dukerupert/chorestore/internal/push"
	"github.com/dukerupert/chorestore/internal/seed"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			v, err := database.Version(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database %s at schema version %d\n", a.cfg.DBPath, v)
			return nil
		},
	}
}

// newGenerateCommand pre-creates today's recurring instances for every
// household, for use from cron.
func newGenerateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Create today's recurring chore instances for all households",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			svc, err := a.services(db)
			if err != nil {
				return err
			}
			n, err := svc.chores.GenerateAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d instances for %s\n", n, svc.chores.Calendar().Today())
			return nil
		},
	}
}

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load a demo household from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			svc, err := a.services(db)
			if err != nil {
				return err
			}
			res, err := seed.Apply(cmd.Context(), f, svc.households, svc.chores, svc.rewards)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"seeded household %s (invite code %s): %d children, %d templates, %d rewards, %d instances\n",
				res.HouseholdID, res.InviteCode, res.Children, res.Templates, res.Rewards, res.Instances)
			return nil
		},
	}
}

func newVAPIDKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid-keys",
		Short: "Generate a VAPID key pair for web push",
		Args:  cobra.NoArgs,
		// Key generation needs no configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, priv, err := push.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "CHORESTORE_VAPID_PUBLIC_KEY=%s\n", pub)
			fmt.Fprintf(out, "CHORESTORE_VAPID_PRIVATE_KEY=%s\n", priv)
			return nil
		},
	}
}
