package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const clientColumns = `id, branch_id, name, phone, card_number, debt, discount_scheme, is_active, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.BranchID, &c.Name, &c.Phone, &c.CardNumber, &c.Debt, &c.DiscountScheme, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

type ListClientsByBranchParams struct {
	BranchID uuid.UUID
	Search   pgtype.Text
	Limit    int32
	Offset   int32
}

const listClientsByBranch = `
SELECT ` + clientColumns + `
FROM clients
WHERE branch_id = $1
  AND is_active
  AND ($2::text IS NULL OR name ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%')
ORDER BY name
LIMIT $3 OFFSET $4
`

func (q *Queries) ListClientsByBranch(ctx context.Context, arg ListClientsByBranchParams) ([]Client, error) {
	var search any
	if arg.Search.Valid {
		search = arg.Search.String
	}
	rows, err := q.db.Query(ctx, listClientsByBranch, arg.BranchID, search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

type GetClientParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

const getClient = `
SELECT ` + clientColumns + `
FROM clients
WHERE id = $1 AND branch_id = $2 AND is_active
`

func (q *Queries) GetClient(ctx context.Context, arg GetClientParams) (Client, error) {
	return scanClient(q.db.QueryRow(ctx, getClient, arg.ID, arg.BranchID))
}

type CreateClientParams struct {
	BranchID       uuid.UUID
	Name           string
	Phone          string
	CardNumber     pgtype.Text
	Debt           pgtype.Numeric
	DiscountScheme pgtype.Text
}

const createClient = `
INSERT INTO clients (branch_id, name, phone, card_number, debt, discount_scheme)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + clientColumns + `
`

func (q *Queries) CreateClient(ctx context.Context, arg CreateClientParams) (Client, error) {
	return scanClient(q.db.QueryRow(ctx, createClient,
		arg.BranchID, arg.Name, arg.Phone, arg.CardNumber, arg.Debt, arg.DiscountScheme))
}

type UpdateClientParams struct {
	ID             uuid.UUID
	BranchID       uuid.UUID
	Name           string
	Phone          string
	CardNumber     pgtype.Text
	Debt           pgtype.Numeric
	DiscountScheme pgtype.Text
}

const updateClient = `
UPDATE clients
SET name = $3, phone = $4, card_number = $5, debt = $6, discount_scheme = $7, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active
RETURNING ` + clientColumns + `
`

func (q *Queries) UpdateClient(ctx context.Context, arg UpdateClientParams) (Client, error) {
	return scanClient(q.db.QueryRow(ctx, updateClient,
		arg.ID, arg.BranchID, arg.Name, arg.Phone, arg.CardNumber, arg.Debt, arg.DiscountScheme))
}

type SoftDeleteClientParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

const softDeleteClient = `
UPDATE clients
SET is_active = FALSE, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND is_active
RETURNING id
`

func (q *Queries) SoftDeleteClient(ctx context.Context, arg SoftDeleteClientParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, softDeleteClient, arg.ID, arg.BranchID).Scan(&id)
	return id, err
}

type GetClientStatsParams struct {
	ClientID uuid.UUID
	BranchID uuid.UUID
}

type GetClientStatsRow struct {
	TotalOrders int64
	TotalSpend  pgtype.Numeric
}

const getClientStats = `
SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
FROM orders
WHERE client_id = $1 AND branch_id = $2
`

func (q *Queries) GetClientStats(ctx context.Context, arg GetClientStatsParams) (GetClientStatsRow, error) {
	var r GetClientStatsRow
	err := q.db.QueryRow(ctx, getClientStats, arg.ClientID, arg.BranchID).Scan(&r.TotalOrders, &r.TotalSpend)
	return r, err
}
