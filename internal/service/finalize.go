// Package service holds order business logic that spans the draft store and
// the archive.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/cleanline-pos/api/internal/database"
	"github.com/cleanline-pos/api/internal/draft"
	"github.com/cleanline-pos/api/internal/metrics"
	"github.com/cleanline-pos/api/internal/ws"
)

const maxOrderNumberRetries = 3

// Errors returned by the finalize service.
var (
	ErrNoClient      = errors.New("a client must be selected")
	ErrNoServices    = errors.New("at least one service is required")
	ErrNoOrderNumber = errors.New("order number is missing")
	ErrBadClientID   = errors.New("invalid client id")
	ErrBadPayment    = errors.New("invalid payment amount")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// FinalizeStore defines the DB methods needed to archive a completed order.
// Satisfied by *database.Queries (and its WithTx variant).
type FinalizeStore interface {
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderService(ctx context.Context, arg database.CreateOrderServiceParams) (database.OrderService, error)
	CreateOrderComment(ctx context.Context, arg database.CreateOrderCommentParams) (database.OrderComment, error)
}

// NewFinalizeStore creates a FinalizeStore from a DBTX (pool or tx).
type NewFinalizeStore func(db database.DBTX) FinalizeStore

// DraftSource is the slice of the draft store the finalizer needs. Claim
// removes the draft so only one finalize can hold it; Restore puts it back
// after a failed attempt.
type DraftSource interface {
	Claim(id uuid.UUID) (*draft.Draft, error)
	Restore(d *draft.Draft)
}

// Broadcaster pushes order events to branch terminals.
type Broadcaster interface {
	BroadcastToBranch(branchID uuid.UUID, event ws.Event)
}

// FinalizeRequest is the validated input for completing a draft.
type FinalizeRequest struct {
	DraftID  uuid.UUID
	BranchID uuid.UUID

	PaymentMethod  string
	AmountReceived string
	ChangeAmount   string
}

// FinalizeResult is the archived order with its service lines.
type FinalizeResult struct {
	Order    database.Order
	Services []database.OrderService
	Comments []database.OrderComment
}

// FinalizeService turns completed drafts into archived orders.
type FinalizeService struct {
	pool     TxBeginner
	newStore NewFinalizeStore
	drafts   DraftSource
	hub      Broadcaster
}

func NewFinalizeService(pool TxBeginner, newStore NewFinalizeStore, drafts DraftSource, hub Broadcaster) *FinalizeService {
	return &FinalizeService{pool: pool, newStore: newStore, drafts: drafts, hub: hub}
}

// Finalize validates the draft, computes totals and archives it atomically.
// The draft is claimed out of the store up front so concurrent completes of
// the same draft cannot insert twice; on any failure it is restored. Retries
// on order_number unique constraint violations with a freshly generated
// suffix.
func (s *FinalizeService) Finalize(ctx context.Context, req FinalizeRequest) (*FinalizeResult, error) {
	d, err := s.drafts.Claim(req.DraftID)
	if err != nil {
		return nil, err
	}
	archived := false
	defer func() {
		if !archived {
			s.drafts.Restore(d)
		}
	}()

	if d.OrderNumber == "" {
		return nil, ErrNoOrderNumber
	}
	if d.Client.ID == "" {
		return nil, ErrNoClient
	}
	if len(d.Services) == 0 {
		return nil, ErrNoServices
	}

	clientID, err := uuid.Parse(d.Client.ID)
	if err != nil {
		return nil, ErrBadClientID
	}

	payMethod, payReceived, payChange, err := parsePayment(req)
	if err != nil {
		return nil, err
	}

	orderNumber := d.OrderNumber
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.finalizeTx(ctx, d, clientID, orderNumber, payMethod, payReceived, payChange)
		if err == nil {
			archived = true
			metrics.OrdersCompleted.WithLabelValues(d.BranchID.String()).Inc()
			s.broadcastCreated(d.BranchID, &result.Order)
			return result, nil
		}
		if database.IsUniqueViolation(err, "orders_branch_id_order_number_key") {
			lastErr = err
			orderNumber = reissueOrderNumber(orderNumber)
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// reissueOrderNumber keeps the date prefix and draws a new random suffix.
func reissueOrderNumber(number string) string {
	prefix, _, _ := strings.Cut(number, "-")
	return fmt.Sprintf("%s-%03d", prefix, rand.IntN(1000))
}

func parsePayment(req FinalizeRequest) (method pgtype.Text, received, change pgtype.Numeric, err error) {
	if req.PaymentMethod != "" {
		method = pgtype.Text{String: req.PaymentMethod, Valid: true}
	}
	if req.AmountReceived != "" {
		v, perr := decimal.NewFromString(req.AmountReceived)
		if perr != nil || v.IsNegative() {
			err = ErrBadPayment
			return
		}
		received = decimalToNumeric(v)
	}
	if req.ChangeAmount != "" {
		v, perr := decimal.NewFromString(req.ChangeAmount)
		if perr != nil || v.IsNegative() {
			err = ErrBadPayment
			return
		}
		change = decimalToNumeric(v)
	}
	return
}

// finalizeTx executes the full archive write in a single transaction.
func (s *FinalizeService) finalizeTx(ctx context.Context, d *draft.Draft, clientID uuid.UUID, orderNumber string, payMethod pgtype.Text, payReceived, payChange pgtype.Numeric) (*FinalizeResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Totals over committed services ---
	totalAmount := decimal.Zero
	itemsCount := int32(0)
	hasPhotos := false
	for _, svc := range d.Services {
		qty := decimal.NewFromInt32(svc.Quantity)
		totalAmount = totalAmount.Add(svc.PriceInput.Mul(qty))
		itemsCount += svc.Quantity
		if len(svc.Photos) > 0 {
			hasPhotos = true
		}
	}
	// One weight unit per item until per-service weights exist.
	weight := decimal.NewFromInt32(itemsCount)

	primaryTag := d.Services[0].TagNumber
	if primaryTag == "" {
		primaryTag = orderNumber + "-001"
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		BranchID:    d.BranchID,
		OrderNumber: orderNumber,
		TagNumber:   d.TagNumber,
		PrimaryTag:  primaryTag,

		ClientID:       clientID,
		ClientName:     d.Client.Name,
		ClientPhone:    d.Client.Phone,
		ClientCard:     textOrNull(d.Client.CardNumber),
		ClientDebt:     decimalToNumeric(d.Client.Debt),
		ClientDiscount: textOrNull(d.Client.DiscountScheme),

		ReceiveDate:  d.ReceiveDate,
		DeliveryDate: d.DeliveryDate,
		ReceiveTime:  d.ReceiveTime,
		DeliveryTime: textOrNull(d.DeliveryTime),

		WarehouseID:         d.WarehouseID,
		DeliveryWarehouseID: d.DeliveryWarehouseID,
		CompanyID:           d.CompanyID,
		ReceiverID:          d.ReceiverID,
		UrgencyType:         d.UrgencyType,
		Discount:            textOrNull(d.Discount),
		DiscountScheme:      textOrNull(d.DiscountScheme),
		Comment:             textOrNull(d.Comment),
		IsReturn:            d.IsReturn,
		IsPartnerOrder:      d.IsPartnerOrder,

		NotificationSetting: int4OrNull(d.NotificationSetting),
		NotificationNumber:  textOrNull(d.NotificationNumber),
		NotificationsAgree:  d.NotificationsAgree,
		ReceiptAgree:        d.ReceiptAgree,
		AdvertAgree:         d.AdvertAgree,

		TotalAmount: decimalToNumeric(totalAmount),
		ItemsCount:  itemsCount,
		Weight:      decimalToNumeric(weight),
		HasPhotos:   hasPhotos,

		PaymentMethod:  payMethod,
		AmountReceived: payReceived,
		ChangeAmount:   payChange,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	result := &FinalizeResult{Order: order}

	for i, svc := range d.Services {
		catalogID := pgtype.UUID{}
		if id, perr := uuid.Parse(svc.ID); perr == nil {
			catalogID = pgtype.UUID{Bytes: id, Valid: true}
		}

		row, err := store.CreateOrderService(ctx, database.CreateOrderServiceParams{
			OrderID:      order.ID,
			CatalogID:    catalogID,
			Name:         svc.Name,
			GroupName:    svc.Group,
			CatalogPrice: decimalToNumeric(svc.Price),
			Quantity:     svc.Quantity,
			Coefficient:  decimalToNumeric(svc.Coefficient),
			TagNumber:    svc.TagNumber,
			Price:        decimalToNumeric(svc.PriceInput),
			Discount:     decimalToNumeric(svc.Discount),
			Markup:       svc.Markup,
			Description:  textOrNull(svc.Description),
			ExtraOptions: svc.ExtraOptions,
			Wear:         textOrNull(svc.Wear),
			Conditions:   svc.Conditions,
			Marking:      svc.Marking,
			LabelNote:    textOrNull(svc.LabelNote),
			Photos:       svc.Photos,
			Position:     int32(i),
		})
		if err != nil {
			return nil, fmt.Errorf("service[%d]: %w", i, err)
		}
		result.Services = append(result.Services, row)
	}

	for i, c := range d.Comments {
		userID := pgtype.UUID{}
		if id, perr := uuid.Parse(c.UserID); perr == nil {
			userID = pgtype.UUID{Bytes: id, Valid: true}
		}
		row, err := store.CreateOrderComment(ctx, database.CreateOrderCommentParams{
			OrderID:  order.ID,
			UserID:   userID,
			UserName: c.UserName,
			Body:     c.Text,
		})
		if err != nil {
			return nil, fmt.Errorf("comment[%d]: %w", i, err)
		}
		result.Comments = append(result.Comments, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

func (s *FinalizeService) broadcastCreated(branchID uuid.UUID, order *database.Order) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"status":       order.Status,
	})
	if err != nil {
		log.Printf("ERROR: marshal order.created payload: %v", err)
		return
	}
	s.hub.BroadcastToBranch(branchID, ws.Event{Type: ws.EventOrderCreated, Payload: payload})
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func int4OrNull(v int) pgtype.Int4 {
	if v == 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(v), Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
