// Command seed loads a demo branch with an owner account, lookup rows,
// a few clients and a starter service catalog. Intended for local
// development; running it twice against the same database will fail on
// the unique constraints.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cleanline-pos/api/internal/config"
	"github.com/cleanline-pos/api/internal/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("apply migrations", "err", err)
		os.Exit(1)
	}

	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect database", "err", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	if err := seed(ctx, conn, cfg); err != nil {
		slog.Error("seed failed", "err", err)
		os.Exit(1)
	}
	slog.Info("seed complete")
}

func seed(ctx context.Context, conn *pgx.Conn, cfg *config.Config) error {
	var branchID uuid.UUID
	err := conn.QueryRow(ctx,
		`INSERT INTO branches (name) VALUES ($1) RETURNING id`,
		"CleanLine Central",
	).Scan(&branchID)
	if err != nil {
		return err
	}
	slog.Info("branch created", "id", branchID)

	hash, err := bcrypt.GenerateFromPassword([]byte("owner123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx,
		`INSERT INTO users (branch_id, email, password_hash, name, role) VALUES ($1, $2, $3, $4, $5)`,
		branchID, "owner@cleanline.local", string(hash), "Owner", "OWNER",
	)
	if err != nil {
		return err
	}

	for _, wh := range []struct{ id, name string }{
		{cfg.DefaultWarehouseID, "Main warehouse"},
		{cfg.DefaultDeliveryWarehouseID, "Delivery warehouse"},
	} {
		if _, err := conn.Exec(ctx,
			`INSERT INTO warehouses (id, branch_id, name) VALUES ($1, $2, $3)`,
			wh.id, branchID, wh.name,
		); err != nil {
			return err
		}
	}
	if _, err := conn.Exec(ctx,
		`INSERT INTO companies (id, branch_id, name) VALUES ($1, $2, $3)`,
		cfg.DefaultCompanyID, branchID, "CleanLine LLC",
	); err != nil {
		return err
	}

	clients := []struct{ name, phone string }{
		{"Anna Petrova", "+79990001122"},
		{"Boris Ivanov", "+79990003344"},
		{"Vera Sidorova", "+79990005566"},
	}
	for _, c := range clients {
		if _, err := conn.Exec(ctx,
			`INSERT INTO clients (branch_id, name, phone) VALUES ($1, $2, $3)`,
			branchID, c.name, c.phone,
		); err != nil {
			return err
		}
	}

	items := []struct {
		name, group, price string
	}{
		{"Coat cleaning", "Outerwear", "1200.00"},
		{"Jacket cleaning", "Outerwear", "900.00"},
		{"Suit cleaning", "Suits", "1500.00"},
		{"Trousers cleaning", "Suits", "600.00"},
		{"Dress cleaning", "Dresses", "1100.00"},
		{"Curtains per kg", "Home textile", "450.00"},
		{"Blanket cleaning", "Home textile", "800.00"},
		{"Leather bag care", "Leather", "1700.00"},
	}
	for _, it := range items {
		if _, err := conn.Exec(ctx,
			`INSERT INTO catalog_items (branch_id, name, group_name, price) VALUES ($1, $2, $3, $4)`,
			branchID, it.name, it.group, it.price,
		); err != nil {
			return err
		}
	}

	slog.Info("demo data inserted", "clients", len(clients), "catalog_items", len(items))
	return nil
}
