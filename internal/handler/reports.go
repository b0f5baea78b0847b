package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/cleanline-pos/api/internal/database"
)

// ReportStore defines the database methods needed by report handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	GetStatusBreakdown(ctx context.Context, arg database.DateRangeParams) ([]database.GetStatusBreakdownRow, error)
	GetDailyRevenue(ctx context.Context, arg database.DateRangeParams) ([]database.GetDailyRevenueRow, error)
	GetRepeatClients(ctx context.Context, arg database.GetRepeatClientsParams) ([]database.GetRepeatClientsRow, error)
}

// ReportHandler serves archive analytics.
type ReportHandler struct {
	store ReportStore
}

func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// RegisterRoutes registers report endpoints on the given Chi router.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/reports
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/status-breakdown", h.StatusBreakdown)
	r.Get("/daily-revenue", h.DailyRevenue)
	r.Get("/repeat-clients", h.RepeatClients)
	r.Get("/export", h.Export)
}

// --- Response types ---

type statusBreakdownResponse struct {
	Status      string `json:"status"`
	OrderCount  int64  `json:"order_count"`
	TotalAmount string `json:"total_amount"`
}

type dailyRevenueResponse struct {
	Date       string `json:"date"`
	OrderCount int64  `json:"order_count"`
	Revenue    string `json:"revenue"`
}

type repeatClientResponse struct {
	ClientID    uuid.UUID `json:"client_id"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	OrderCount  int64     `json:"order_count"`
	TotalSpend  string    `json:"total_spend"`
}

// --- Handlers ---

// StatusBreakdown returns order counts and revenue grouped by status.
func (h *ReportHandler) StatusBreakdown(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter, want YYYY-MM-DD")
		return
	}

	rows, err := h.store.GetStatusBreakdown(r.Context(), database.DateRangeParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: status breakdown: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]statusBreakdownResponse, len(rows))
	for i, row := range rows {
		resp[i] = statusBreakdownResponse{
			Status:      row.Status,
			OrderCount:  row.OrderCount,
			TotalAmount: numericToString(row.TotalAmount),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// DailyRevenue returns per-day order counts and revenue.
func (h *ReportHandler) DailyRevenue(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter, want YYYY-MM-DD")
		return
	}

	rows, err := h.store.GetDailyRevenue(r.Context(), database.DateRangeParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: daily revenue: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toDailyRevenueResponses(rows))
}

// RepeatClients returns clients with at least min_orders archived orders,
// most frequent first.
func (h *ReportHandler) RepeatClients(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	minOrders := int64(2)
	if s := r.URL.Query().Get("min_orders"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid min_orders")
			return
		}
		minOrders = n
	}
	limit, _ := pagination(r)

	rows, err := h.store.GetRepeatClients(r.Context(), database.GetRepeatClientsParams{
		BranchID:  bid,
		MinOrders: minOrders,
		Limit:     limit,
	})
	if err != nil {
		log.Printf("ERROR: repeat clients: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]repeatClientResponse, len(rows))
	for i, row := range rows {
		resp[i] = repeatClientResponse{
			ClientID:    row.ClientID,
			ClientName:  row.ClientName,
			ClientPhone: row.ClientPhone,
			OrderCount:  row.OrderCount,
			TotalSpend:  numericToString(row.TotalSpend),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Export streams the daily revenue report as an xlsx workbook.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date filter, want YYYY-MM-DD")
		return
	}

	rows, err := h.store.GetDailyRevenue(r.Context(), database.DateRangeParams{
		BranchID:  bid,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Printf("ERROR: daily revenue export: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Daily Revenue"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		log.Printf("ERROR: rename sheet: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Date", "Orders", "Revenue"}); err != nil {
		log.Printf("ERROR: write header row: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	for i, row := range toDailyRevenueResponses(rows) {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]any{row.Date, row.OrderCount, row.Revenue}); err != nil {
			log.Printf("ERROR: write report row: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="daily-revenue.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Printf("ERROR: stream workbook: %v", err)
	}
}

func toDailyRevenueResponses(rows []database.GetDailyRevenueRow) []dailyRevenueResponse {
	resp := make([]dailyRevenueResponse, len(rows))
	for i, row := range rows {
		date := ""
		if row.Day.Valid {
			date = row.Day.Time.Format("2006-01-02")
		}
		resp[i] = dailyRevenueResponse{
			Date:       date,
			OrderCount: row.OrderCount,
			Revenue:    numericToString(row.Revenue),
		}
	}
	return resp
}
