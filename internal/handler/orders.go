package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cleanline-pos/api/internal/database"
	"github.com/cleanline-pos/api/internal/enum"
	"github.com/cleanline-pos/api/internal/metrics"
	"github.com/cleanline-pos/api/internal/ws"
)

// allowedTransitions defines the forward-only order status machine.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:    {enum.OrderStatusProcessing},
	enum.OrderStatusProcessing: {enum.OrderStatusCompleted},
	enum.OrderStatusCompleted:  {},
}

func isTransitionAllowed(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrderStore defines the database methods needed by archive handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	GetOrder(ctx context.Context, arg database.GetOrderParams) (database.Order, error)
	ListOrderServices(ctx context.Context, orderID uuid.UUID) ([]database.OrderService, error)
	ListOrderComments(ctx context.Context, orderID uuid.UUID) ([]database.OrderComment, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	DeleteOrder(ctx context.Context, arg database.DeleteOrderParams) (uuid.UUID, error)
	GetOrderTotals(ctx context.Context, branchID uuid.UUID) (database.GetOrderTotalsRow, error)
}

// Broadcaster pushes order events to branch terminals.
type Broadcaster interface {
	BroadcastToBranch(branchID uuid.UUID, event ws.Event)
}

// OrderHandler serves the completed order archive.
type OrderHandler struct {
	store OrderStore
	hub   Broadcaster
}

func NewOrderHandler(store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{store: store, hub: hub}
}

// RegisterRoutes registers archive endpoints on the given Chi router.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/totals", h.Totals)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/status", h.UpdateStatus)
		r.Delete("/", h.Delete)
	})
}

// --- Response types ---

type orderResponse struct {
	ID          uuid.UUID `json:"id"`
	BranchID    uuid.UUID `json:"branch_id"`
	OrderNumber string    `json:"order_number"`
	TagNumber   string    `json:"tag_number"`
	PrimaryTag  string    `json:"primary_tag"`
	Status      string    `json:"status"`

	ClientID       uuid.UUID `json:"client_id"`
	ClientName     string    `json:"client_name"`
	ClientPhone    string    `json:"client_phone"`
	ClientCard     string    `json:"client_card,omitempty"`
	ClientDebt     string    `json:"client_debt"`
	ClientDiscount string    `json:"client_discount,omitempty"`

	ReceiveDate  string `json:"receive_date"`
	DeliveryDate string `json:"delivery_date"`
	ReceiveTime  string `json:"receive_time"`
	DeliveryTime string `json:"delivery_time,omitempty"`

	WarehouseID         string `json:"warehouse_id"`
	DeliveryWarehouseID string `json:"delivery_warehouse_id"`
	CompanyID           string `json:"company_id"`
	ReceiverID          string `json:"receiver_id"`
	UrgencyType         string `json:"urgency_type"`
	Discount            string `json:"discount,omitempty"`
	DiscountScheme      string `json:"discount_scheme,omitempty"`
	Comment             string `json:"comment,omitempty"`
	IsReturn            bool   `json:"is_return"`
	IsPartnerOrder      bool   `json:"is_partner_order"`

	TotalAmount string `json:"total_amount"`
	ItemsCount  int32  `json:"items_count"`
	Weight      string `json:"weight"`
	HasPhotos   bool   `json:"has_photos"`

	PaymentMethod  string `json:"payment_method,omitempty"`
	AmountReceived string `json:"amount_received,omitempty"`
	ChangeAmount   string `json:"change_amount,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type orderServiceLineResponse struct {
	ID           uuid.UUID `json:"id"`
	CatalogID    string    `json:"catalog_id,omitempty"`
	Name         string    `json:"name"`
	Group        string    `json:"group"`
	CatalogPrice string    `json:"catalog_price"`
	Quantity     int32     `json:"quantity"`
	Coefficient  string    `json:"coefficient"`
	TagNumber    string    `json:"tag_number"`
	Price        string    `json:"price"`
	Discount     string    `json:"discount"`
	Markup       string    `json:"markup"`
	Description  string    `json:"description,omitempty"`
	ExtraOptions []string  `json:"extra_options,omitempty"`
	Wear         string    `json:"wear,omitempty"`
	Conditions   []string  `json:"conditions,omitempty"`
	Marking      []string  `json:"marking,omitempty"`
	LabelNote    string    `json:"label_note,omitempty"`
	Photos       []string  `json:"photos,omitempty"`
}

type orderCommentResponse struct {
	ID        uuid.UUID `json:"id"`
	UserName  string    `json:"user_name"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type orderDetailResponse struct {
	orderResponse
	Services []orderServiceLineResponse `json:"services"`
	Comments []orderCommentResponse     `json:"comments"`
}

type orderTotalsResponse struct {
	TotalCount  int64  `json:"total_count"`
	TotalAmount string `json:"total_amount"`
}

func toOrderResponse(o database.Order) orderResponse {
	return orderResponse{
		ID:          o.ID,
		BranchID:    o.BranchID,
		OrderNumber: o.OrderNumber,
		TagNumber:   o.TagNumber,
		PrimaryTag:  o.PrimaryTag,
		Status:      o.Status,

		ClientID:       o.ClientID,
		ClientName:     o.ClientName,
		ClientPhone:    o.ClientPhone,
		ClientCard:     textOrEmpty(o.ClientCard),
		ClientDebt:     numericToString(o.ClientDebt),
		ClientDiscount: textOrEmpty(o.ClientDiscount),

		ReceiveDate:  o.ReceiveDate,
		DeliveryDate: o.DeliveryDate,
		ReceiveTime:  o.ReceiveTime,
		DeliveryTime: textOrEmpty(o.DeliveryTime),

		WarehouseID:         o.WarehouseID,
		DeliveryWarehouseID: o.DeliveryWarehouseID,
		CompanyID:           o.CompanyID,
		ReceiverID:          o.ReceiverID,
		UrgencyType:         o.UrgencyType,
		Discount:            textOrEmpty(o.Discount),
		DiscountScheme:      textOrEmpty(o.DiscountScheme),
		Comment:             textOrEmpty(o.Comment),
		IsReturn:            o.IsReturn,
		IsPartnerOrder:      o.IsPartnerOrder,

		TotalAmount: numericToString(o.TotalAmount),
		ItemsCount:  o.ItemsCount,
		Weight:      numericToString(o.Weight),
		HasPhotos:   o.HasPhotos,

		PaymentMethod:  textOrEmpty(o.PaymentMethod),
		AmountReceived: numericToString(o.AmountReceived),
		ChangeAmount:   numericToString(o.ChangeAmount),

		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toServiceLineResponse(s database.OrderService) orderServiceLineResponse {
	resp := orderServiceLineResponse{
		ID:           s.ID,
		Name:         s.Name,
		Group:        s.GroupName,
		CatalogPrice: numericToString(s.CatalogPrice),
		Quantity:     s.Quantity,
		Coefficient:  numericToString(s.Coefficient),
		TagNumber:    s.TagNumber,
		Price:        numericToString(s.Price),
		Discount:     numericToString(s.Discount),
		Markup:       s.Markup,
		Description:  textOrEmpty(s.Description),
		ExtraOptions: s.ExtraOptions,
		Wear:         textOrEmpty(s.Wear),
		Conditions:   s.Conditions,
		Marking:      s.Marking,
		LabelNote:    textOrEmpty(s.LabelNote),
		Photos:       s.Photos,
	}
	if s.CatalogID.Valid {
		resp.CatalogID = uuid.UUID(s.CatalogID.Bytes).String()
	}
	return resp
}

// --- Handlers ---

// List returns archived orders newest first, with optional status, client
// and date filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	limit, offset := pagination(r)

	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter, want YYYY-MM-DD")
		return
	}

	params := database.ListOrdersParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
		Limit:     limit,
		Offset:    offset,
	}

	if s := r.URL.Query().Get("status"); s != "" {
		if _, ok := allowedTransitions[s]; !ok {
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		params.Status = textOrNull(s)
	}
	if s := r.URL.Query().Get("client_id"); s != "" {
		clientID, err := uuid.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid client_id filter")
			return
		}
		params.ClientID = pgtypeUUID(clientID)
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one archived order with its service lines and comments.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	services, err := h.store.ListOrderServices(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order services: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	comments, err := h.store.ListOrderComments(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order comments: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	detail := orderDetailResponse{
		orderResponse: toOrderResponse(order),
		Services:      make([]orderServiceLineResponse, len(services)),
		Comments:      make([]orderCommentResponse, len(comments)),
	}
	for i, s := range services {
		detail.Services[i] = toServiceLineResponse(s)
	}
	for i, c := range comments {
		detail.Comments[i] = orderCommentResponse{ID: c.ID, UserName: c.UserName, Body: c.Body, CreatedAt: c.CreatedAt}
	}

	writeJSON(w, http.StatusOK, detail)
}

// UpdateStatus advances the order along the status machine. Transitions
// only move forward; anything else is rejected.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, ok := allowedTransitions[req.Status]; !ok {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	current, err := h.store.GetOrder(r.Context(), database.GetOrderParams{ID: orderID, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !isTransitionAllowed(current.Status, req.Status) {
		writeError(w, http.StatusConflict, "status can only move forward")
		return
	}

	order, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:        orderID,
		BranchID:  bid,
		Status:    req.Status,
		OldStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the optimistic race: someone moved the order between
			// our read and write.
			writeError(w, http.StatusConflict, "order status changed concurrently")
			return
		}
		log.Printf("ERROR: update order status: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	metrics.StatusTransitions.WithLabelValues(req.Status).Inc()
	h.broadcast(bid, ws.EventOrderStatusChanged, order)

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Delete removes an archived order and its service lines.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	if _, err := h.store.DeleteOrder(r.Context(), database.DeleteOrderParams{ID: orderID, BranchID: bid}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Printf("ERROR: delete order: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.broadcast(bid, ws.EventOrderDeleted, database.Order{ID: orderID, BranchID: bid})
	w.WriteHeader(http.StatusNoContent)
}

// Totals returns the archive-wide order count and revenue sum.
func (h *OrderHandler) Totals(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	totals, err := h.store.GetOrderTotals(r.Context(), bid)
	if err != nil {
		log.Printf("ERROR: order totals: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, orderTotalsResponse{
		TotalCount:  totals.TotalCount,
		TotalAmount: numericToString(totals.TotalAmount),
	})
}

func (h *OrderHandler) broadcast(branchID uuid.UUID, eventType string, order database.Order) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"status":       order.Status,
	})
	if err != nil {
		log.Printf("ERROR: marshal %s payload: %v", eventType, err)
		return
	}
	h.hub.BroadcastToBranch(branchID, ws.Event{Type: eventType, Payload: payload})
}
