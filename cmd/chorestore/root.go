package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dukerupert/chorestore/internal/auth"
	"github.com/dukerupert/chorestore/internal/chore"
	"github.com/dukerupert/chorestore/internal/config"
	"github.com/dukerupert/chorestore/internal/database"
	"github.com/dukerupert/chorestore/internal/email"
	"github.com/dukerupert/chorestore/internal/household"
	"github.com/dukerupert/chorestore/internal/logging"
	"github.com/dukerupert/chorestore/internal/reward"
	"github.com/dukerupert/chorestore/internal/store"
)

// app holds what every subcommand needs once flags and env are processed.
type app struct {
	envFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "chorestore",
		Short:         "Household chores, points and rewards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.Setup(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newMigrateCommand(a))
	cmd.AddCommand(newGenerateCommand(a))
	cmd.AddCommand(newSeedCommand(a))
	cmd.AddCommand(newVAPIDKeysCommand())

	return cmd
}

func (a *app) openDB() (*sql.DB, error) {
	db, err := database.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func (a *app) calendar() (*chore.Calendar, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return chore.NewCalendar(loc), nil
}

func (a *app) mailer() *email.Client {
	return email.NewClient(a.cfg.PostmarkToken, a.cfg.PostmarkFrom, a.cfg.BaseURL)
}

// services wires the domain services the offline commands use.
type services struct {
	households *household.Service
	chores     *chore.Service
	rewards    *reward.Service
}

func (a *app) services(db *sql.DB) (*services, error) {
	cal, err := a.calendar()
	if err != nil {
		return nil, err
	}
	users := store.NewUserStore(db)
	households := store.NewHouseholdStore(db)
	children := store.NewChildStore(db)

	return &services{
		households: household.NewService(users, households, children, auth.NewTokens(a.cfg.JWTSecret), a.mailer(), a.logger),
		chores:     chore.NewService(store.NewTemplateStore(db), store.NewInstanceStore(db), children, households, cal, a.logger),
		rewards:    reward.NewService(store.NewRewardStore(db), store.NewRedemptionStore(db), children, a.logger),
	}, nil
}
