/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartstack/identity/config"
	"github.com/cartstack/identity/internal/db"
	"github.com/cartstack/identity/internal/store"
	"github.com/cartstack/identity/internal/uow"
	"github.com/cartstack/identity/types"
)

const (
	seedAdminEmail    = "admin@example.com"
	seedAdminName     = "Admin User"
	seedAdminPassword = "adminpassword"
)

// seedCmd represents the seed command. Roles must exist before signup can
// attach them, so seeding is the out-of-band path that creates them.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the default roles and admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer dbConn.Close()

		conn, err := dbConn.Conn(cmd.Context())
		if err != nil {
			return fmt.Errorf("acquire session: %w", err)
		}
		defer conn.Close()

		ctx := uow.NewContext(cmd.Context(), conn)

		roleRepo := store.NewRoleRepository()
		adminRole, err := roleRepo.EnsureRole(ctx, "admin")
		if err != nil {
			return fmt.Errorf("seed admin role: %w", err)
		}
		if _, err := roleRepo.EnsureRole(ctx, "customer"); err != nil {
			return fmt.Errorf("seed customer role: %w", err)
		}

		accountRepo := store.NewAccountRepository()
		if _, err := accountRepo.GetUserByEmail(ctx, seedAdminEmail); err == nil {
			fmt.Printf("admin user %s already exists, skipping\n", seedAdminEmail)
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("check admin user: %w", err)
		}

		admin := types.User{
			Email:    seedAdminEmail,
			FullName: seedAdminName,
			IsActive: true,
			Password: seedAdminPassword,
			Roles:    []types.Role{adminRole},
		}
		if err := accountRepo.CreateUser(ctx, &admin); err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}

		fmt.Printf("seeded roles and admin user %s (id %d)\n", admin.Email, admin.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
