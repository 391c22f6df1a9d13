// Package main is the operator CLI: schema migrations and console user management.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agro-ad/backend/config"
	"github.com/agro-ad/backend/internal/auth"
	"github.com/agro-ad/backend/internal/models"
	"github.com/agro-ad/backend/pkg/database"
	"github.com/agro-ad/backend/pkg/utils"
)

var rootCmd = &cobra.Command{
	Use:           "agro-admin",
	Short:         "Signage backend admin: migrations and console users",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runMigrate,
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a console user (or reset the password with --reset)",
	RunE:  runCreateUser,
}

var (
	flagUsername string
	flagPassword string
	flagRole     string
	flagReset    bool
)

func init() {
	createUserCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "login name")
	createUserCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "plain password (or ADMIN_PASSWORD env)")
	createUserCmd.Flags().StringVar(&flagRole, "role", string(models.RoleAdmin), "admin or user")
	createUserCmd.Flags().BoolVar(&flagReset, "reset", false, "replace the password of an existing user")
	_ = createUserCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createUserCmd)
}

func main() {
	logger := newLogger()
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("admin", zap.Error(err))
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	pool, err := openPool(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	return database.Migrate(cmd.Context(), pool, logger)
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	username := strings.TrimSpace(flagUsername)
	password := flagPassword
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if err := utils.ValidatePassword(password); err != nil {
		return err
	}
	role := models.Role(flagRole)
	if role != models.RoleAdmin && role != models.RoleUser {
		return fmt.Errorf("unknown role %q", flagRole)
	}

	logger := newLogger()
	pool, err := openPool(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	repo := auth.NewRepository(pool)
	if flagReset {
		if err := repo.SetPassword(cmd.Context(), username, hash); err != nil {
			return err
		}
		logger.Info("password reset", zap.String("username", username))
		return nil
	}
	user, err := repo.Create(cmd.Context(), username, hash, role)
	if errors.Is(err, auth.ErrUsernameTaken) {
		return fmt.Errorf("%w (use --reset to change the password)", err)
	}
	if err != nil {
		return err
	}
	logger.Info("user created", zap.String("id", user.ID.String()), zap.String("username", user.Username))
	return nil
}

func openPool(ctx context.Context, logger *zap.Logger) (*pgxpool.Pool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), 2, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return pool, nil
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
