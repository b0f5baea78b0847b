package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const catalogColumns = `id, branch_id, name, group_name, price, is_active, created_at`

type ListCatalogItemsParams struct {
	BranchID  uuid.UUID
	GroupName pgtype.Text
	Search    pgtype.Text
	Limit     int32
	Offset    int32
}

const listCatalogItems = `
SELECT ` + catalogColumns + `
FROM catalog_items
WHERE branch_id = $1
  AND is_active
  AND ($2::text IS NULL OR group_name = $2)
  AND ($3::text IS NULL OR name ILIKE '%' || $3 || '%')
ORDER BY group_name, name
LIMIT $4 OFFSET $5
`

func (q *Queries) ListCatalogItems(ctx context.Context, arg ListCatalogItemsParams) ([]CatalogItem, error) {
	var group, search any
	if arg.GroupName.Valid {
		group = arg.GroupName.String
	}
	if arg.Search.Valid {
		search = arg.Search.String
	}
	rows, err := q.db.Query(ctx, listCatalogItems, arg.BranchID, group, search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CatalogItem
	for rows.Next() {
		var it CatalogItem
		if err := rows.Scan(&it.ID, &it.BranchID, &it.Name, &it.GroupName, &it.Price, &it.IsActive, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type GetCatalogItemParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

const getCatalogItem = `
SELECT ` + catalogColumns + `
FROM catalog_items
WHERE id = $1 AND branch_id = $2 AND is_active
`

func (q *Queries) GetCatalogItem(ctx context.Context, arg GetCatalogItemParams) (CatalogItem, error) {
	var it CatalogItem
	err := q.db.QueryRow(ctx, getCatalogItem, arg.ID, arg.BranchID).
		Scan(&it.ID, &it.BranchID, &it.Name, &it.GroupName, &it.Price, &it.IsActive, &it.CreatedAt)
	return it, err
}

const listCatalogGroups = `
SELECT DISTINCT group_name
FROM catalog_items
WHERE branch_id = $1 AND is_active
ORDER BY group_name
`

func (q *Queries) ListCatalogGroups(ctx context.Context, branchID uuid.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, listCatalogGroups, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

type CreateCatalogItemParams struct {
	BranchID  uuid.UUID
	Name      string
	GroupName string
	Price     pgtype.Numeric
}

const createCatalogItem = `
INSERT INTO catalog_items (branch_id, name, group_name, price)
VALUES ($1, $2, $3, $4)
RETURNING ` + catalogColumns + `
`

func (q *Queries) CreateCatalogItem(ctx context.Context, arg CreateCatalogItemParams) (CatalogItem, error) {
	var it CatalogItem
	err := q.db.QueryRow(ctx, createCatalogItem, arg.BranchID, arg.Name, arg.GroupName, arg.Price).
		Scan(&it.ID, &it.BranchID, &it.Name, &it.GroupName, &it.Price, &it.IsActive, &it.CreatedAt)
	return it, err
}

const listWarehouses = `
SELECT id, branch_id, name FROM warehouses WHERE branch_id = $1 ORDER BY name
`

func (q *Queries) ListWarehouses(ctx context.Context, branchID uuid.UUID) ([]Warehouse, error) {
	rows, err := q.db.Query(ctx, listWarehouses, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var whs []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.BranchID, &w.Name); err != nil {
			return nil, err
		}
		whs = append(whs, w)
	}
	return whs, rows.Err()
}

const listCompanies = `
SELECT id, branch_id, name FROM companies WHERE branch_id = $1 ORDER BY name
`

func (q *Queries) ListCompanies(ctx context.Context, branchID uuid.UUID) ([]Company, error) {
	rows, err := q.db.Query(ctx, listCompanies, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cos []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.BranchID, &c.Name); err != nil {
			return nil, err
		}
		cos = append(cos, c)
	}
	return cos, rows.Err()
}

const getWarehouseName = `
SELECT name FROM warehouses WHERE id = $1
`

func (q *Queries) GetWarehouseName(ctx context.Context, id string) (string, error) {
	var name string
	err := q.db.QueryRow(ctx, getWarehouseName, id).Scan(&name)
	return name, err
}

const getCompanyName = `
SELECT name FROM companies WHERE id = $1
`

func (q *Queries) GetCompanyName(ctx context.Context, id string) (string, error) {
	var name string
	err := q.db.QueryRow(ctx, getCompanyName, id).Scan(&name)
	return name, err
}
