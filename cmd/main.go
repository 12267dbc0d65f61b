package main

import (
	"fmt"
	"os"
	"strings"

	"clinical-records-api/cmd/bootstrap"
	"clinical-records-api/config"
	"clinical-records-api/internal/infrastructure/cache"
	"clinical-records-api/internal/service"
	"clinical-records-api/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinical-records-api",
		Short: "Multi-tenant clinical records API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := bootstrap.NewLogger(cfg.Log)
	log.Info("Configuration loaded successfully")

	// Initialize application with all dependencies
	app, err := bootstrap.New(cfg, log)
	if err != nil {
		log.Errorf("Failed to initialize application: %v", err)
		return err
	}

	// Run the application
	return app.Run()
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	run := func(up bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return bootstrap.Migrate(cfg, bootstrap.NewLogger(cfg.Log), up)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE:  run(true),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE:  run(false),
	})

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		tenant       string
		user         string
		entitlements string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}
			userID := uuid.New()
			if user != "" {
				if userID, err = uuid.Parse(user); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var grants []string
			for _, g := range strings.Split(entitlements, ",") {
				if g = strings.TrimSpace(g); g != "" {
					grants = append(grants, strings.ToLower(g))
				}
			}

			jwtService := jwt.NewJWTService(cfg.JWT)
			token, tokenID, err := jwtService.GenerateAccessToken(tenantID, userID, grants)
			if err != nil {
				return err
			}

			bootstrap.NewLogger(cfg.Log).WithFields(logrus.Fields{
				"token_id": tokenID,
				"user_id":  userID.String(),
				"expires":  jwtService.GetAccessExpiry().String(),
			}).Info("Token issued")
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant id (uuid)")
	cmd.Flags().StringVar(&user, "user", "", "User id (uuid), random when empty")
	cmd.Flags().StringVar(&entitlements, "entitlements", "*:*", "Comma separated entitlements, e.g. treatment:read,prescription:*")
	_ = cmd.MarkFlagRequired("tenant")

	cmd.AddCommand(revokeCmd())
	return cmd
}

func revokeCmd() *cobra.Command {
	var tokenID string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke an access token by its token id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cfg.Redis.Enabled {
				return fmt.Errorf("token revocation needs REDIS_ENABLED=true")
			}
			log := bootstrap.NewLogger(cfg.Log)

			redisClient, err := cache.NewRedisClient(cfg.Redis, log)
			if err != nil {
				return err
			}
			defer redisClient.Close()

			revocation := service.NewTokenRevocationService(log, redisClient)
			if err := revocation.Revoke(cmd.Context(), tokenID, jwt.NewJWTService(cfg.JWT).GetAccessExpiry()); err != nil {
				return err
			}
			log.WithField("token_id", tokenID).Info("Token revoked")
			return nil
		},
	}

	cmd.Flags().StringVar(&tokenID, "token-id", "", "Token id printed when the token was issued")
	_ = cmd.MarkFlagRequired("token-id")

	return cmd
}
