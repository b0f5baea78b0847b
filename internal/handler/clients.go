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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/cleanline-pos/api/internal/database"
)

// ClientStore defines the database methods needed by client handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ClientStore interface {
	ListClientsByBranch(ctx context.Context, arg database.ListClientsByBranchParams) ([]database.Client, error)
	GetClient(ctx context.Context, arg database.GetClientParams) (database.Client, error)
	CreateClient(ctx context.Context, arg database.CreateClientParams) (database.Client, error)
	UpdateClient(ctx context.Context, arg database.UpdateClientParams) (database.Client, error)
	SoftDeleteClient(ctx context.Context, arg database.SoftDeleteClientParams) (uuid.UUID, error)
	GetClientStats(ctx context.Context, arg database.GetClientStatsParams) (database.GetClientStatsRow, error)
}

// ClientHandler handles the client directory endpoints.
type ClientHandler struct {
	store ClientStore
}

func NewClientHandler(store ClientStore) *ClientHandler {
	return &ClientHandler{store: store}
}

// RegisterRoutes registers client endpoints on the given Chi router.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/clients
func (h *ClientHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Get("/stats", h.Stats)
	})
}

// --- Request / Response types ---

type clientRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	CardNumber     string `json:"card_number"`
	Debt           string `json:"debt"`
	DiscountScheme string `json:"discount_scheme"`
}

type clientResponse struct {
	ID             uuid.UUID `json:"id"`
	BranchID       uuid.UUID `json:"branch_id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	CardNumber     string    `json:"card_number"`
	Debt           string    `json:"debt"`
	DiscountScheme string    `json:"discount_scheme"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type clientStatsResponse struct {
	TotalOrders int64  `json:"total_orders"`
	TotalSpend  string `json:"total_spend"`
}

func toClientResponse(c database.Client) clientResponse {
	return clientResponse{
		ID:             c.ID,
		BranchID:       c.BranchID,
		Name:           c.Name,
		Phone:          c.Phone,
		CardNumber:     textOrEmpty(c.CardNumber),
		Debt:           numericToString(c.Debt),
		DiscountScheme: textOrEmpty(c.DiscountScheme),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// --- Handlers ---

// List returns active clients of the branch, with optional search over name
// and phone.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	limit, offset := pagination(r)

	clients, err := h.store.ListClientsByBranch(r.Context(), database.ListClientsByBranchParams{
		BranchID: bid,
		Search:   textOrNull(r.URL.Query().Get("search")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		log.Printf("ERROR: list clients: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]clientResponse, len(clients))
	for i, c := range clients {
		resp[i] = toClientResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single client by ID.
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	client, err := h.store.GetClient(r.Context(), database.GetClientParams{ID: clientID, BranchID: bid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}
		log.Printf("ERROR: get client: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toClientResponse(client))
}

// Create adds a new client to the branch directory.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	debt, err := parseDebt(req.Debt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid debt")
		return
	}

	client, err := h.store.CreateClient(r.Context(), database.CreateClientParams{
		BranchID:       bid,
		Name:           req.Name,
		Phone:          req.Phone,
		CardNumber:     textOrNull(req.CardNumber),
		Debt:           debt,
		DiscountScheme: textOrNull(req.DiscountScheme),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeError(w, http.StatusConflict, "phone already exists for this branch")
			return
		}
		log.Printf("ERROR: create client: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toClientResponse(client))
}

// Update modifies an existing client.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	debt, err := parseDebt(req.Debt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid debt")
		return
	}

	client, err := h.store.UpdateClient(r.Context(), database.UpdateClientParams{
		ID:             clientID,
		BranchID:       bid,
		Name:           req.Name,
		Phone:          req.Phone,
		CardNumber:     textOrNull(req.CardNumber),
		Debt:           debt,
		DiscountScheme: textOrNull(req.DiscountScheme),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			writeError(w, http.StatusConflict, "phone already exists for this branch")
			return
		}
		log.Printf("ERROR: update client: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toClientResponse(client))
}

// Delete soft-deletes a client. Archived orders keep their denormalized
// client fields either way.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	if _, err := h.store.SoftDeleteClient(r.Context(), database.SoftDeleteClientParams{ID: clientID, BranchID: bid}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}
		log.Printf("ERROR: delete client: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats returns order count and lifetime spend for one client.
func (h *ClientHandler) Stats(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	// Existence check so unknown clients 404 instead of returning zeros.
	if _, err := h.store.GetClient(r.Context(), database.GetClientParams{ID: clientID, BranchID: bid}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "client not found")
			return
		}
		log.Printf("ERROR: get client: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	stats, err := h.store.GetClientStats(r.Context(), database.GetClientStatsParams{ClientID: clientID, BranchID: bid})
	if err != nil {
		log.Printf("ERROR: client stats: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, clientStatsResponse{
		TotalOrders: stats.TotalOrders,
		TotalSpend:  numericToString(stats.TotalSpend),
	})
}

// parseDebt accepts an empty string as null.
func parseDebt(s string) (pgtype.Numeric, error) {
	if s == "" {
		return pgtype.Numeric{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return pgtype.Numeric{}, err
	}
	return decimalToNumeric(d), nil
}
