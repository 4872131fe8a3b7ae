package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mainhusharm/main-launch/internal/app"
	"github.com/mainhusharm/main-launch/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("journal: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		profile    string
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "journal",
		Short:         "Trading journal API and frontend server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := config.ParseProfile(profile)
			if err != nil {
				return err
			}
			cfg, err := config.Load(p, configPath)
			if err != nil {
				return err
			}

			a, err := app.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}

	defaultProfile := os.Getenv("APP_PROFILE")
	if defaultProfile == "" {
		defaultProfile = string(config.Development)
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", defaultProfile, "configuration profile (development|production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "optional YAML config file")
	return cmd
}
