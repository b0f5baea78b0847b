package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/cleanline-pos/api/internal/database"
	"github.com/cleanline-pos/api/internal/enum"
)

// CatalogStore defines the database methods needed by catalog handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CatalogStore interface {
	ListCatalogItems(ctx context.Context, arg database.ListCatalogItemsParams) ([]database.CatalogItem, error)
	GetCatalogItem(ctx context.Context, arg database.GetCatalogItemParams) (database.CatalogItem, error)
	ListCatalogGroups(ctx context.Context, branchID uuid.UUID) ([]string, error)
	CreateCatalogItem(ctx context.Context, arg database.CreateCatalogItemParams) (database.CatalogItem, error)
	ListWarehouses(ctx context.Context, branchID uuid.UUID) ([]database.Warehouse, error)
	ListCompanies(ctx context.Context, branchID uuid.UUID) ([]database.Company, error)
}

// CatalogHandler serves the service catalog browser and the dropdown data
// the wizard's order step needs.
type CatalogHandler struct {
	store CatalogStore
}

func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// RegisterRoutes registers catalog endpoints on the given Chi router.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/catalog
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/items", h.ListItems)
	r.Post("/items", h.CreateItem)
	r.Get("/items/{id}", h.GetItem)
	r.Get("/groups", h.ListGroups)
	r.Get("/warehouses", h.ListWarehouses)
	r.Get("/companies", h.ListCompanies)
	r.Get("/options", h.Options)
}

// --- Request / Response types ---

type catalogItemResponse struct {
	ID        uuid.UUID `json:"id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	Price     string    `json:"price"`
}

type createCatalogItemRequest struct {
	Name  string `json:"name"`
	Group string `json:"group"`
	Price string `json:"price"`
}

type lookupResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// optionsResponse carries the fixed selector values of the wizard so the
// client never hardcodes them.
type optionsResponse struct {
	WearLevels           []string       `json:"wear_levels"`
	UrgencyTypes         []string       `json:"urgency_types"`
	Markups              []string       `json:"markups"`
	DiscountSchemes      []string       `json:"discount_schemes"`
	PaymentMethods       []string       `json:"payment_methods"`
	NotificationSettings map[string]int `json:"notification_settings"`
}

func toCatalogItemResponse(it database.CatalogItem) catalogItemResponse {
	return catalogItemResponse{
		ID:       it.ID,
		BranchID: it.BranchID,
		Name:     it.Name,
		Group:    it.GroupName,
		Price:    numericToString(it.Price),
	}
}

// --- Handlers ---

// ListItems returns catalog entries, optionally filtered by group and name
// search.
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	limit, offset := pagination(r)

	items, err := h.store.ListCatalogItems(r.Context(), database.ListCatalogItemsParams{
		BranchID:  bid,
		GroupName: textOrNull(r.URL.Query().Get("group")),
		Search:    textOrNull(r.URL.Query().Get("search")),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		log.Printf("ERROR: list catalog items: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]catalogItemResponse, len(items))
	for i, it := range items {
		resp[i] = toCatalogItemResponse(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetItem returns a single catalog entry.
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item ID")
		return
	}

	item, err := h.store.GetCatalogItem(r.Context(), database.GetCatalogItemParams{ID: itemID, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "catalog item not found")
			return
		}
		log.Printf("ERROR: get catalog item: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toCatalogItemResponse(item))
}

// CreateItem adds a catalog entry.
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	var req createCatalogItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Group == "" {
		writeError(w, http.StatusBadRequest, "name and group are required")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || !price.IsPositive() {
		writeError(w, http.StatusBadRequest, "price must be a positive number")
		return
	}

	item, err := h.store.CreateCatalogItem(r.Context(), database.CreateCatalogItemParams{
		BranchID:  bid,
		Name:      req.Name,
		GroupName: req.Group,
		Price:     decimalToNumeric(price),
	})
	if err != nil {
		log.Printf("ERROR: create catalog item: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toCatalogItemResponse(item))
}

// ListGroups returns the distinct catalog group names of the branch.
func (h *CatalogHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	groups, err := h.store.ListCatalogGroups(r.Context(), bid)
	if err != nil {
		log.Printf("ERROR: list catalog groups: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if groups == nil {
		groups = []string{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// ListWarehouses returns the warehouse dropdown entries.
func (h *CatalogHandler) ListWarehouses(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	whs, err := h.store.ListWarehouses(r.Context(), bid)
	if err != nil {
		log.Printf("ERROR: list warehouses: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]lookupResponse, len(whs))
	for i, wh := range whs {
		resp[i] = lookupResponse{ID: wh.ID, Name: wh.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCompanies returns the company dropdown entries.
func (h *CatalogHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	companies, err := h.store.ListCompanies(r.Context(), bid)
	if err != nil {
		log.Printf("ERROR: list companies: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]lookupResponse, len(companies))
	for i, c := range companies {
		resp[i] = lookupResponse{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Options returns the fixed selector values.
func (h *CatalogHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{
		WearLevels:      enum.WearLevels,
		UrgencyTypes:    []string{enum.UrgencyNormal, enum.UrgencyUrgent},
		Markups:         []string{enum.MarkupNone, enum.MarkupHandled, enum.MarkupComplex},
		DiscountSchemes: []string{enum.DiscountSchemeNone, enum.DiscountSchemeCard, enum.DiscountSchemeWorkers},
		PaymentMethods:  []string{enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodTransfer},
		NotificationSettings: map[string]int{
			"client_phone": enum.NotificationClientPhone,
			"new_number":   enum.NotificationNewNumber,
			"none":         enum.NotificationNone,
		},
	})
}
