package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type DateRangeParams struct {
	BranchID  uuid.UUID
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
}

func rangeArgs(arg DateRangeParams) (any, any) {
	var start, end any
	if arg.StartDate.Valid {
		start = arg.StartDate.Time
	}
	if arg.EndDate.Valid {
		end = arg.EndDate.Time
	}
	return start, end
}

type GetStatusBreakdownRow struct {
	Status      string
	OrderCount  int64
	TotalAmount pgtype.Numeric
}

const getStatusBreakdown = `
SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
FROM orders
WHERE branch_id = $1
  AND ($2::timestamptz IS NULL OR created_at >= $2)
  AND ($3::timestamptz IS NULL OR created_at < $3 + INTERVAL '1 day')
GROUP BY status
ORDER BY status
`

func (q *Queries) GetStatusBreakdown(ctx context.Context, arg DateRangeParams) ([]GetStatusBreakdownRow, error) {
	start, end := rangeArgs(arg)
	rows, err := q.db.Query(ctx, getStatusBreakdown, arg.BranchID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetStatusBreakdownRow
	for rows.Next() {
		var r GetStatusBreakdownRow
		if err := rows.Scan(&r.Status, &r.OrderCount, &r.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type GetDailyRevenueRow struct {
	Day        pgtype.Date
	OrderCount int64
	Revenue    pgtype.Numeric
}

const getDailyRevenue = `
SELECT created_at::date AS day, COUNT(*), COALESCE(SUM(total_amount), 0)
FROM orders
WHERE branch_id = $1
  AND ($2::timestamptz IS NULL OR created_at >= $2)
  AND ($3::timestamptz IS NULL OR created_at < $3 + INTERVAL '1 day')
GROUP BY day
ORDER BY day
`

func (q *Queries) GetDailyRevenue(ctx context.Context, arg DateRangeParams) ([]GetDailyRevenueRow, error) {
	start, end := rangeArgs(arg)
	rows, err := q.db.Query(ctx, getDailyRevenue, arg.BranchID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetDailyRevenueRow
	for rows.Next() {
		var r GetDailyRevenueRow
		if err := rows.Scan(&r.Day, &r.OrderCount, &r.Revenue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type GetRepeatClientsRow struct {
	ClientID    uuid.UUID
	ClientName  string
	ClientPhone string
	OrderCount  int64
	TotalSpend  pgtype.Numeric
}

const getRepeatClients = `
SELECT client_id, client_name, client_phone, COUNT(*), COALESCE(SUM(total_amount), 0)
FROM orders
WHERE branch_id = $1
GROUP BY client_id, client_name, client_phone
HAVING COUNT(*) >= $2
ORDER BY COUNT(*) DESC, client_name
LIMIT $3
`

type GetRepeatClientsParams struct {
	BranchID  uuid.UUID
	MinOrders int64
	Limit     int32
}

func (q *Queries) GetRepeatClients(ctx context.Context, arg GetRepeatClientsParams) ([]GetRepeatClientsRow, error) {
	rows, err := q.db.Query(ctx, getRepeatClients, arg.BranchID, arg.MinOrders, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GetRepeatClientsRow
	for rows.Next() {
		var r GetRepeatClientsRow
		if err := rows.Scan(&r.ClientID, &r.ClientName, &r.ClientPhone, &r.OrderCount, &r.TotalSpend); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
