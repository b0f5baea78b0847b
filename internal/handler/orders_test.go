package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cleanline-pos/api/internal/database"
	"github.com/cleanline-pos/api/internal/handler"
	"github.com/cleanline-pos/api/internal/ws"
)

// --- Mock store ---

type mockOrderStore struct {
	orders   map[uuid.UUID]database.Order
	services map[uuid.UUID][]database.OrderService
	comments map[uuid.UUID][]database.OrderComment
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		orders:   make(map[uuid.UUID]database.Order),
		services: make(map[uuid.UUID][]database.OrderService),
		comments: make(map[uuid.UUID][]database.OrderComment),
	}
}

func (m *mockOrderStore) ListOrders(_ context.Context, arg database.ListOrdersParams) ([]database.Order, error) {
	var result []database.Order
	for _, o := range m.orders {
		if o.BranchID != arg.BranchID {
			continue
		}
		if arg.Status.Valid && o.Status != arg.Status.String {
			continue
		}
		if arg.ClientID.Valid && o.ClientID != uuid.UUID(arg.ClientID.Bytes) {
			continue
		}
		result = append(result, o)
	}
	// Newest first, like the real query.
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockOrderStore) GetOrder(_ context.Context, arg database.GetOrderParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.BranchID != arg.BranchID {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) ListOrderServices(_ context.Context, orderID uuid.UUID) ([]database.OrderService, error) {
	return m.services[orderID], nil
}

func (m *mockOrderStore) ListOrderComments(_ context.Context, orderID uuid.UUID) ([]database.OrderComment, error) {
	return m.comments[orderID], nil
}

func (m *mockOrderStore) UpdateOrderStatus(_ context.Context, arg database.UpdateOrderStatusParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.BranchID != arg.BranchID || o.Status != arg.OldStatus {
		return database.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	o.UpdatedAt = time.Now()
	m.orders[arg.ID] = o
	return o, nil
}

func (m *mockOrderStore) DeleteOrder(_ context.Context, arg database.DeleteOrderParams) (uuid.UUID, error) {
	o, ok := m.orders[arg.ID]
	if !ok || o.BranchID != arg.BranchID {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.orders, arg.ID)
	return o.ID, nil
}

func (m *mockOrderStore) GetOrderTotals(_ context.Context, branchID uuid.UUID) (database.GetOrderTotalsRow, error) {
	var row database.GetOrderTotalsRow
	for _, o := range m.orders {
		if o.BranchID == branchID {
			row.TotalCount++
		}
	}
	_ = row.TotalAmount.Scan("1500.00")
	return row, nil
}

func (m *mockOrderStore) addOrder(branchID uuid.UUID, number, status string, createdAt time.Time) database.Order {
	var total pgtype.Numeric
	_ = total.Scan("500.00")
	o := database.Order{
		ID:          uuid.New(),
		BranchID:    branchID,
		OrderNumber: number,
		TagNumber:   "12345678901",
		PrimaryTag:  "00-00001",
		Status:      status,
		ClientID:    uuid.New(),
		ClientName:  "Anna",
		ClientPhone: "+79990001122",
		ReceiveDate: "2025-03-14",
		TotalAmount: total,
		ItemsCount:  1,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	m.orders[o.ID] = o
	return o
}

func newOrderRouter(store *mockOrderStore, hub *recordingHub) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/branches/{bid}/orders", func(r chi.Router) {
		handler.NewOrderHandler(store, hub).RegisterRoutes(r)
	})
	return r
}

type recordingHub struct {
	events []ws.Event
}

func (m *recordingHub) BroadcastToBranch(branchID uuid.UUID, event ws.Event) {
	m.events = append(m.events, event)
}

// --- Tests ---

func TestOrderListNewestFirst(t *testing.T) {
	store := newMockOrderStore()
	branchID := uuid.New()
	old := store.addOrder(branchID, "250310-001", "PENDING", time.Now().Add(-48*time.Hour))
	recent := store.addOrder(branchID, "250312-002", "PENDING", time.Now())
	store.addOrder(uuid.New(), "250312-003", "PENDING", time.Now())

	router := newOrderRouter(store, &recordingHub{})
	rec := doRequest(t, router, http.MethodGet, "/branches/"+branchID.String()+"/orders/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp []struct {
		OrderNumber string `json:"order_number"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 2 {
		t.Fatalf("orders = %d, want 2 (branch scoping)", len(resp))
	}
	if resp[0].OrderNumber != recent.OrderNumber || resp[1].OrderNumber != old.OrderNumber {
		t.Errorf("order = %v, want newest first", resp)
	}
}

func TestOrderListStatusFilter(t *testing.T) {
	store := newMockOrderStore()
	branchID := uuid.New()
	store.addOrder(branchID, "250310-001", "PENDING", time.Now())
	store.addOrder(branchID, "250310-002", "COMPLETED", time.Now())

	router := newOrderRouter(store, &recordingHub{})
	base := "/branches/" + branchID.String() + "/orders/"

	rec := doRequest(t, router, http.MethodGet, base+"?status=COMPLETED", "")
	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp) != 1 || resp[0]["status"] != "COMPLETED" {
		t.Errorf("filtered = %v", resp)
	}

	if rec := doRequest(t, router, http.MethodGet, base+"?status=BOGUS", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bogus status filter accepted, status = %d", rec.Code)
	}
}

func TestOrderGetDetail(t *testing.T) {
	store := newMockOrderStore()
	branchID := uuid.New()
	o := store.addOrder(branchID, "250310-001", "PENDING", time.Now())
	store.services[o.ID] = []database.OrderService{
		{ID: uuid.New(), OrderID: o.ID, Name: "Coat cleaning", Quantity: 2, TagNumber: "00-00001"},
	}
	store.comments[o.ID] = []database.OrderComment{
		{ID: uuid.New(), OrderID: o.ID, UserName: "Olga", Body: "handle with care"},
	}

	router := newOrderRouter(store, &recordingHub{})
	rec := doRequest(t, router, http.MethodGet, "/branches/"+branchID.String()+"/orders/"+o.ID.String()+"/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		OrderNumber string `json:"order_number"`
		Services    []struct {
			Name string `json:"name"`
		} `json:"services"`
		Comments []struct {
			Body string `json:"body"`
		} `json:"comments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Services) != 1 || resp.Services[0].Name != "Coat cleaning" {
		t.Errorf("services = %v", resp.Services)
	}
	if len(resp.Comments) != 1 || resp.Comments[0].Body != "handle with care" {
		t.Errorf("comments = %v", resp.Comments)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  string
		to    string
		wantC int
	}{
		{"pending to processing", "PENDING", "PROCESSING", http.StatusOK},
		{"processing to completed", "PROCESSING", "COMPLETED", http.StatusOK},
		{"pending skips to completed", "PENDING", "COMPLETED", http.StatusConflict},
		{"completed goes back", "COMPLETED", "PENDING", http.StatusConflict},
		{"processing goes back", "PROCESSING", "PENDING", http.StatusConflict},
		{"unknown status", "PENDING", "SHIPPED", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockOrderStore()
			branchID := uuid.New()
			o := store.addOrder(branchID, "250310-001", tt.from, time.Now())
			hub := &recordingHub{}
			router := newOrderRouter(store, hub)

			rec := doRequest(t, router, http.MethodPatch,
				"/branches/"+branchID.String()+"/orders/"+o.ID.String()+"/status",
				`{"status":"`+tt.to+`"}`)
			if rec.Code != tt.wantC {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantC, rec.Body)
			}

			if tt.wantC == http.StatusOK {
				if store.orders[o.ID].Status != tt.to {
					t.Errorf("stored status = %q", store.orders[o.ID].Status)
				}
				if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderStatusChanged {
					t.Errorf("broadcasts = %+v", hub.events)
				}
			} else if store.orders[o.ID].Status != tt.from {
				t.Errorf("rejected transition still changed status to %q", store.orders[o.ID].Status)
			}
		})
	}
}

func TestOrderDelete(t *testing.T) {
	store := newMockOrderStore()
	branchID := uuid.New()
	o := store.addOrder(branchID, "250310-001", "PENDING", time.Now())
	hub := &recordingHub{}
	router := newOrderRouter(store, hub)

	rec := doRequest(t, router, http.MethodDelete, "/branches/"+branchID.String()+"/orders/"+o.ID.String()+"/", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if _, ok := store.orders[o.ID]; ok {
		t.Error("order still present after delete")
	}
	if len(hub.events) != 1 || hub.events[0].Type != ws.EventOrderDeleted {
		t.Errorf("broadcasts = %+v", hub.events)
	}

	rec = doRequest(t, router, http.MethodDelete, "/branches/"+branchID.String()+"/orders/"+o.ID.String()+"/", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestOrderTotals(t *testing.T) {
	store := newMockOrderStore()
	branchID := uuid.New()
	store.addOrder(branchID, "250310-001", "PENDING", time.Now())
	store.addOrder(branchID, "250310-002", "COMPLETED", time.Now())

	router := newOrderRouter(store, &recordingHub{})
	rec := doRequest(t, router, http.MethodGet, "/branches/"+branchID.String()+"/orders/totals", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		TotalCount  int64  `json:"total_count"`
		TotalAmount string `json:"total_amount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalCount != 2 || resp.TotalAmount != "1500.00" {
		t.Errorf("totals = %+v", resp)
	}
}
