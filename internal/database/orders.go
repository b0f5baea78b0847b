package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, branch_id, order_number, tag_number, primary_tag, status,
client_id, client_name, client_phone, client_card, client_debt, client_discount,
receive_date, delivery_date, receive_time, delivery_time,
warehouse_id, delivery_warehouse_id, company_id, receiver_id, urgency_type,
discount, discount_scheme, comment, is_return, is_partner_order,
notification_setting, notification_number, notifications_agree, receipt_agree, advert_agree,
total_amount, items_count, weight, has_photos,
payment_method, amount_received, change_amount,
created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.BranchID, &o.OrderNumber, &o.TagNumber, &o.PrimaryTag, &o.Status,
		&o.ClientID, &o.ClientName, &o.ClientPhone, &o.ClientCard, &o.ClientDebt, &o.ClientDiscount,
		&o.ReceiveDate, &o.DeliveryDate, &o.ReceiveTime, &o.DeliveryTime,
		&o.WarehouseID, &o.DeliveryWarehouseID, &o.CompanyID, &o.ReceiverID, &o.UrgencyType,
		&o.Discount, &o.DiscountScheme, &o.Comment, &o.IsReturn, &o.IsPartnerOrder,
		&o.NotificationSetting, &o.NotificationNumber, &o.NotificationsAgree, &o.ReceiptAgree, &o.AdvertAgree,
		&o.TotalAmount, &o.ItemsCount, &o.Weight, &o.HasPhotos,
		&o.PaymentMethod, &o.AmountReceived, &o.ChangeAmount,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

type CreateOrderParams struct {
	BranchID    uuid.UUID
	OrderNumber string
	TagNumber   string
	PrimaryTag  string

	ClientID       uuid.UUID
	ClientName     string
	ClientPhone    string
	ClientCard     pgtype.Text
	ClientDebt     pgtype.Numeric
	ClientDiscount pgtype.Text

	ReceiveDate  string
	DeliveryDate string
	ReceiveTime  string
	DeliveryTime pgtype.Text

	WarehouseID         string
	DeliveryWarehouseID string
	CompanyID           string
	ReceiverID          string
	UrgencyType         string
	Discount            pgtype.Text
	DiscountScheme      pgtype.Text
	Comment             pgtype.Text
	IsReturn            bool
	IsPartnerOrder      bool

	NotificationSetting pgtype.Int4
	NotificationNumber  pgtype.Text
	NotificationsAgree  bool
	ReceiptAgree        bool
	AdvertAgree         bool

	TotalAmount pgtype.Numeric
	ItemsCount  int32
	Weight      pgtype.Numeric
	HasPhotos   bool

	PaymentMethod  pgtype.Text
	AmountReceived pgtype.Numeric
	ChangeAmount   pgtype.Numeric
}

const createOrder = `
INSERT INTO orders (
    branch_id, order_number, tag_number, primary_tag,
    client_id, client_name, client_phone, client_card, client_debt, client_discount,
    receive_date, delivery_date, receive_time, delivery_time,
    warehouse_id, delivery_warehouse_id, company_id, receiver_id, urgency_type,
    discount, discount_scheme, comment, is_return, is_partner_order,
    notification_setting, notification_number, notifications_agree, receipt_agree, advert_agree,
    total_amount, items_count, weight, has_photos,
    payment_method, amount_received, change_amount
) VALUES (
    $1, $2, $3, $4,
    $5, $6, $7, $8, $9, $10,
    $11, $12, $13, $14,
    $15, $16, $17, $18, $19,
    $20, $21, $22, $23, $24,
    $25, $26, $27, $28, $29,
    $30, $31, $32, $33,
    $34, $35, $36
)
RETURNING ` + orderColumns + `
`

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.BranchID, arg.OrderNumber, arg.TagNumber, arg.PrimaryTag,
		arg.ClientID, arg.ClientName, arg.ClientPhone, arg.ClientCard, arg.ClientDebt, arg.ClientDiscount,
		arg.ReceiveDate, arg.DeliveryDate, arg.ReceiveTime, arg.DeliveryTime,
		arg.WarehouseID, arg.DeliveryWarehouseID, arg.CompanyID, arg.ReceiverID, arg.UrgencyType,
		arg.Discount, arg.DiscountScheme, arg.Comment, arg.IsReturn, arg.IsPartnerOrder,
		arg.NotificationSetting, arg.NotificationNumber, arg.NotificationsAgree, arg.ReceiptAgree, arg.AdvertAgree,
		arg.TotalAmount, arg.ItemsCount, arg.Weight, arg.HasPhotos,
		arg.PaymentMethod, arg.AmountReceived, arg.ChangeAmount,
	))
}

type GetOrderParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1 AND branch_id = $2
`

func (q *Queries) GetOrder(ctx context.Context, arg GetOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, arg.ID, arg.BranchID))
}

type ListOrdersParams struct {
	BranchID  uuid.UUID
	Status    pgtype.Text
	ClientID  pgtype.UUID
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

// Newest first: the archive presents orders most-recent-first.
const listOrders = `
SELECT ` + orderColumns + `
FROM orders
WHERE branch_id = $1
  AND ($2::text IS NULL OR status = $2)
  AND ($3::uuid IS NULL OR client_id = $3)
  AND ($4::timestamptz IS NULL OR created_at >= $4)
  AND ($5::timestamptz IS NULL OR created_at < $5 + INTERVAL '1 day')
ORDER BY created_at DESC
LIMIT $6 OFFSET $7
`

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	var status, clientID, start, end any
	if arg.Status.Valid {
		status = arg.Status.String
	}
	if arg.ClientID.Valid {
		clientID = uuid.UUID(arg.ClientID.Bytes)
	}
	if arg.StartDate.Valid {
		start = arg.StartDate.Time
	}
	if arg.EndDate.Valid {
		end = arg.EndDate.Time
	}

	rows, err := q.db.Query(ctx, listOrders, arg.BranchID, status, clientID, start, end, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type UpdateOrderStatusParams struct {
	ID        uuid.UUID
	BranchID  uuid.UUID
	Status    string
	OldStatus string
}

// The WHERE clause enforces the read status optimistically: zero rows means
// the order changed between read and write.
const updateOrderStatus = `
UPDATE orders
SET status = $3, updated_at = now()
WHERE id = $1 AND branch_id = $2 AND status = $4
RETURNING ` + orderColumns + `
`

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.BranchID, arg.Status, arg.OldStatus))
}

type DeleteOrderParams struct {
	ID       uuid.UUID
	BranchID uuid.UUID
}

const deleteOrder = `
DELETE FROM orders
WHERE id = $1 AND branch_id = $2
RETURNING id
`

func (q *Queries) DeleteOrder(ctx context.Context, arg DeleteOrderParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx, deleteOrder, arg.ID, arg.BranchID).Scan(&id)
	return id, err
}

const countOrders = `
SELECT COUNT(*) FROM orders WHERE branch_id = $1
`

// CountOrders reports how many orders the branch has ever archived. The
// draft defaults use it to detect the first-ever order.
func (q *Queries) CountOrders(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countOrders, branchID).Scan(&n)
	return n, err
}

type GetOrderTotalsRow struct {
	TotalCount  int64
	TotalAmount pgtype.Numeric
}

const getOrderTotals = `
SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
FROM orders
WHERE branch_id = $1
`

func (q *Queries) GetOrderTotals(ctx context.Context, branchID uuid.UUID) (GetOrderTotalsRow, error) {
	var r GetOrderTotalsRow
	err := q.db.QueryRow(ctx, getOrderTotals, branchID).Scan(&r.TotalCount, &r.TotalAmount)
	return r, err
}

// --- Order services ---

const orderServiceColumns = `id, order_id, catalog_id, name, group_name, catalog_price,
quantity, coefficient, tag_number, price, discount, markup, description,
extra_options, wear, conditions, marking, label_note, photos, position`

func scanOrderService(row interface{ Scan(...any) error }) (OrderService, error) {
	var s OrderService
	err := row.Scan(
		&s.ID, &s.OrderID, &s.CatalogID, &s.Name, &s.GroupName, &s.CatalogPrice,
		&s.Quantity, &s.Coefficient, &s.TagNumber, &s.Price, &s.Discount, &s.Markup, &s.Description,
		&s.ExtraOptions, &s.Wear, &s.Conditions, &s.Marking, &s.LabelNote, &s.Photos, &s.Position,
	)
	return s, err
}

type CreateOrderServiceParams struct {
	OrderID      uuid.UUID
	CatalogID    pgtype.UUID
	Name         string
	GroupName    string
	CatalogPrice pgtype.Numeric
	Quantity     int32
	Coefficient  pgtype.Numeric
	TagNumber    string
	Price        pgtype.Numeric
	Discount     pgtype.Numeric
	Markup       string
	Description  pgtype.Text
	ExtraOptions []string
	Wear         pgtype.Text
	Conditions   []string
	Marking      []string
	LabelNote    pgtype.Text
	Photos       []string
	Position     int32
}

const createOrderService = `
INSERT INTO order_services (
    order_id, catalog_id, name, group_name, catalog_price,
    quantity, coefficient, tag_number, price, discount, markup, description,
    extra_options, wear, conditions, marking, label_note, photos, position
) VALUES (
    $1, $2, $3, $4, $5,
    $6, $7, $8, $9, $10, $11, $12,
    $13, $14, $15, $16, $17, $18, $19
)
RETURNING ` + orderServiceColumns + `
`

func (q *Queries) CreateOrderService(ctx context.Context, arg CreateOrderServiceParams) (OrderService, error) {
	return scanOrderService(q.db.QueryRow(ctx, createOrderService,
		arg.OrderID, arg.CatalogID, arg.Name, arg.GroupName, arg.CatalogPrice,
		arg.Quantity, arg.Coefficient, arg.TagNumber, arg.Price, arg.Discount, arg.Markup, arg.Description,
		arg.ExtraOptions, arg.Wear, arg.Conditions, arg.Marking, arg.LabelNote, arg.Photos, arg.Position,
	))
}

const listOrderServices = `
SELECT ` + orderServiceColumns + `
FROM order_services
WHERE order_id = $1
ORDER BY position
`

func (q *Queries) ListOrderServices(ctx context.Context, orderID uuid.UUID) ([]OrderService, error) {
	rows, err := q.db.Query(ctx, listOrderServices, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []OrderService
	for rows.Next() {
		s, err := scanOrderService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// --- Order comments ---

type CreateOrderCommentParams struct {
	OrderID  uuid.UUID
	UserID   pgtype.UUID
	UserName string
	Body     string
}

const createOrderComment = `
INSERT INTO order_comments (order_id, user_id, user_name, body)
VALUES ($1, $2, $3, $4)
RETURNING id, order_id, user_id, user_name, body, created_at
`

func (q *Queries) CreateOrderComment(ctx context.Context, arg CreateOrderCommentParams) (OrderComment, error) {
	var c OrderComment
	err := q.db.QueryRow(ctx, createOrderComment, arg.OrderID, arg.UserID, arg.UserName, arg.Body).
		Scan(&c.ID, &c.OrderID, &c.UserID, &c.UserName, &c.Body, &c.CreatedAt)
	return c, err
}

const listOrderComments = `
SELECT id, order_id, user_id, user_name, body, created_at
FROM order_comments
WHERE order_id = $1
ORDER BY created_at
`

func (q *Queries) ListOrderComments(ctx context.Context, orderID uuid.UUID) ([]OrderComment, error) {
	rows, err := q.db.Query(ctx, listOrderComments, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []OrderComment
	for rows.Next() {
		var c OrderComment
		if err := rows.Scan(&c.ID, &c.OrderID, &c.UserID, &c.UserName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
