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
	"github.com/shopspring/decimal"

	"github.com/cleanline-pos/api/internal/database"
	"github.com/cleanline-pos/api/internal/draft"
	"github.com/cleanline-pos/api/internal/metrics"
	"github.com/cleanline-pos/api/internal/middleware"
	"github.com/cleanline-pos/api/internal/service"
)

// DraftLookupStore defines the database reads the wizard needs: the client
// picker, the catalog picker and the first-order check.
// Satisfied by *database.Queries.
type DraftLookupStore interface {
	GetClient(ctx context.Context, arg database.GetClientParams) (database.Client, error)
	GetCatalogItem(ctx context.Context, arg database.GetCatalogItemParams) (database.CatalogItem, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	CountOrders(ctx context.Context, branchID uuid.UUID) (int64, error)
}

// Finalizer archives a completed draft.
type Finalizer interface {
	Finalize(ctx context.Context, req service.FinalizeRequest) (*service.FinalizeResult, error)
}

// DraftDefaults carries the business configuration seeded into new drafts.
type DraftDefaults struct {
	WarehouseID         string
	DeliveryWarehouseID string
	CompanyID           string
	UrgencyType         string
}

// DraftHandler drives the order-creation wizard.
type DraftHandler struct {
	drafts    *draft.Store
	store     DraftLookupStore
	finalizer Finalizer
	defaults  DraftDefaults
}

func NewDraftHandler(drafts *draft.Store, store DraftLookupStore, finalizer Finalizer, defaults DraftDefaults) *DraftHandler {
	return &DraftHandler{drafts: drafts, store: store, finalizer: finalizer, defaults: defaults}
}

// RegisterRoutes registers wizard endpoints on the given Chi router.
// Expected to be mounted inside a branch-scoped subrouter: /branches/{bid}/drafts
func (h *DraftHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Patch)
		r.Delete("/", h.Discard)
		r.Post("/client", h.SelectClient)
		r.Post("/comments", h.AddComment)
		r.Post("/complete", h.Complete)

		r.Route("/service-edit", func(r chi.Router) {
			r.Post("/", h.StartServiceEdit)
			r.Patch("/", h.UpdateService)
			r.Delete("/", h.CancelServiceEdit)
			r.Post("/commit", h.CommitService)
			r.Post("/photos", h.AddPhotos)
			r.Post("/photo-session", h.BeginPhotoSession)
			r.Delete("/photo-session", h.CancelPhotoSession)
			r.Post("/photo-blocklist", h.BlockPhotos)
			r.Post("/photo-blocklist/remove", h.UnblockPhoto)
			r.Delete("/photo-blocklist", h.ClearBlockList)
		})
	})
}

// --- Request / Response types ---

type draftServiceResponse struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Group        string   `json:"group,omitempty"`
	Price        string   `json:"price"`
	Quantity     int32    `json:"quantity"`
	Coefficient  string   `json:"coefficient"`
	TagNumber    string   `json:"tag_number"`
	PriceInput   string   `json:"price_input"`
	Discount     string   `json:"discount"`
	Markup       string   `json:"markup"`
	Description  string   `json:"description,omitempty"`
	ExtraOptions []string `json:"extra_options,omitempty"`
	Wear         string   `json:"wear,omitempty"`
	Conditions   []string `json:"conditions,omitempty"`
	Marking      []string `json:"marking,omitempty"`
	LabelNote    string   `json:"label_note,omitempty"`
	Photos       []string `json:"photos,omitempty"`

	PhotoBlockList []string `json:"photo_block_list,omitempty"`
	CanCommit      bool     `json:"can_commit"`
}

// draftTotalsResponse is the payment-step summary. AmountDue is the sum of
// price x quantity - price x discount / 100 over committed services.
type draftTotalsResponse struct {
	ItemsCount int32  `json:"items_count"`
	Amount     string `json:"amount"`
	AmountDue  string `json:"amount_due"`
}

type draftCommentResponse struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	UserName string    `json:"user_name"`
	Date     time.Time `json:"date"`
	Text     string    `json:"text"`
}

type draftClientResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	CardNumber     string `json:"card_number,omitempty"`
	Debt           string `json:"debt"`
	DiscountScheme string `json:"discount_scheme,omitempty"`
}

type draftResponse struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`

	Client              draftClientResponse `json:"client"`
	NotificationSetting int                 `json:"notification_setting"`
	NotificationNumber  string              `json:"notification_number"`
	NotificationsAgree  bool                `json:"notifications_agree"`
	ReceiptAgree        bool                `json:"receipt_agree"`
	AdvertAgree         bool                `json:"advert_agree"`

	OrderNumber  string `json:"order_number"`
	TagNumber    string `json:"tag_number"`
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

	Services []draftServiceResponse `json:"services"`
	Selected *draftServiceResponse  `json:"selected,omitempty"`
	Comments []draftCommentResponse `json:"comments"`

	Totals draftTotalsResponse `json:"totals"`
	Gates  []draft.Gate        `json:"gates"`

	CreatedAt time.Time `json:"created_at"`
}

func toServiceResponse(s *draft.Service, scratch bool) draftServiceResponse {
	resp := draftServiceResponse{
		ID:           s.ID,
		Name:         s.Name,
		Group:        s.Group,
		Price:        s.Price.StringFixed(2),
		Quantity:     s.Quantity,
		Coefficient:  s.Coefficient.String(),
		TagNumber:    s.TagNumber,
		PriceInput:   s.PriceInput.StringFixed(2),
		Discount:     s.Discount.String(),
		Markup:       s.Markup,
		Description:  s.Description,
		ExtraOptions: s.ExtraOptions,
		Wear:         s.Wear,
		Conditions:   s.Conditions,
		Marking:      s.Marking,
		LabelNote:    s.LabelNote,
		Photos:       s.Photos,
	}
	if scratch {
		resp.PhotoBlockList = s.PhotoBlockList
		resp.CanCommit = s.Quantity > 0 && s.PriceInput.IsPositive() && s.TagNumber != ""
	}
	return resp
}

func toDraftResponse(d *draft.Draft) draftResponse {
	resp := draftResponse{
		ID:       d.ID,
		BranchID: d.BranchID,

		Client: draftClientResponse{
			ID:             d.Client.ID,
			Name:           d.Client.Name,
			Phone:          d.Client.Phone,
			CardNumber:     d.Client.CardNumber,
			Debt:           d.Client.Debt.StringFixed(2),
			DiscountScheme: d.Client.DiscountScheme,
		},
		NotificationSetting: d.NotificationSetting,
		NotificationNumber:  d.NotificationNumber,
		NotificationsAgree:  d.NotificationsAgree,
		ReceiptAgree:        d.ReceiptAgree,
		AdvertAgree:         d.AdvertAgree,

		OrderNumber:  d.OrderNumber,
		TagNumber:    d.TagNumber,
		ReceiveDate:  d.ReceiveDate,
		DeliveryDate: d.DeliveryDate,
		ReceiveTime:  d.ReceiveTime,
		DeliveryTime: d.DeliveryTime,

		WarehouseID:         d.WarehouseID,
		DeliveryWarehouseID: d.DeliveryWarehouseID,
		CompanyID:           d.CompanyID,
		ReceiverID:          d.ReceiverID,
		UrgencyType:         d.UrgencyType,
		Discount:            d.Discount,
		DiscountScheme:      d.DiscountScheme,
		Comment:             d.Comment,
		IsReturn:            d.IsReturn,
		IsPartnerOrder:      d.IsPartnerOrder,

		Services: make([]draftServiceResponse, len(d.Services)),
		Comments: make([]draftCommentResponse, len(d.Comments)),
		Gates:    draft.EvaluateGates(d),

		CreatedAt: d.CreatedAt,
	}
	totals := d.Totals()
	resp.Totals = draftTotalsResponse{
		ItemsCount: totals.ItemsCount,
		Amount:     totals.Amount.StringFixed(2),
		AmountDue:  totals.AmountDue.StringFixed(2),
	}
	for i := range d.Services {
		resp.Services[i] = toServiceResponse(&d.Services[i], false)
	}
	if d.Selected != nil {
		s := toServiceResponse(d.Selected, true)
		resp.Selected = &s
	}
	for i, c := range d.Comments {
		resp.Comments[i] = draftCommentResponse{ID: c.ID, UserID: c.UserID, UserName: c.UserName, Date: c.Date, Text: c.Text}
	}
	return resp
}

// draftPatchRequest mirrors draft.Patch with JSON names. Pointer fields
// distinguish "absent" from "set to zero value".
type draftPatchRequest struct {
	NotificationSetting *int    `json:"notification_setting"`
	NotificationNumber  *string `json:"notification_number"`
	NotificationsAgree  *bool   `json:"notifications_agree"`
	ReceiptAgree        *bool   `json:"receipt_agree"`
	AdvertAgree         *bool   `json:"advert_agree"`

	TagNumber    *string `json:"tag_number"`
	ReceiveDate  *string `json:"receive_date"`
	DeliveryDate *string `json:"delivery_date"`
	ReceiveTime  *string `json:"receive_time"`
	DeliveryTime *string `json:"delivery_time"`

	WarehouseID         *string `json:"warehouse_id"`
	DeliveryWarehouseID *string `json:"delivery_warehouse_id"`
	CompanyID           *string `json:"company_id"`
	ReceiverID          *string `json:"receiver_id"`
	UrgencyType         *string `json:"urgency_type"`
	Discount            *string `json:"discount"`
	DiscountScheme      *string `json:"discount_scheme"`
	Comment             *string `json:"comment"`
	IsReturn            *bool   `json:"is_return"`
	IsPartnerOrder      *bool   `json:"is_partner_order"`
}

func (req draftPatchRequest) toPatch() draft.Patch {
	return draft.Patch{
		NotificationSetting: req.NotificationSetting,
		NotificationNumber:  req.NotificationNumber,
		NotificationsAgree:  req.NotificationsAgree,
		ReceiptAgree:        req.ReceiptAgree,
		AdvertAgree:         req.AdvertAgree,
		TagNumber:           req.TagNumber,
		ReceiveDate:         req.ReceiveDate,
		DeliveryDate:        req.DeliveryDate,
		ReceiveTime:         req.ReceiveTime,
		DeliveryTime:        req.DeliveryTime,
		WarehouseID:         req.WarehouseID,
		DeliveryWarehouseID: req.DeliveryWarehouseID,
		CompanyID:           req.CompanyID,
		UrgencyType:         req.UrgencyType,
		ReceiverID:          req.ReceiverID,
		Discount:            req.Discount,
		DiscountScheme:      req.DiscountScheme,
		Comment:             req.Comment,
		IsReturn:            req.IsReturn,
		IsPartnerOrder:      req.IsPartnerOrder,
	}
}

// --- Handlers ---

// Create opens a new wizard session. The first order a branch ever creates
// gets the fixed first-order tag, so the archive is consulted here.
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}

	count, err := h.store.CountOrders(r.Context(), bid)
	if err != nil {
		log.Printf("ERROR: count orders: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	receiverID := ""
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		receiverID = claims.UserID.String()
	}

	d := h.drafts.Create(bid, draft.Defaults{
		ReceiverID:          receiverID,
		WarehouseID:         h.defaults.WarehouseID,
		DeliveryWarehouseID: h.defaults.DeliveryWarehouseID,
		CompanyID:           h.defaults.CompanyID,
		UrgencyType:         h.defaults.UrgencyType,
		FirstOrder:          count == 0,
	})
	metrics.ActiveDrafts.Set(float64(h.drafts.Count()))

	writeJSON(w, http.StatusCreated, toDraftResponse(d))
}

// Get returns the draft with its evaluated step gates.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, ok := h.loadDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// Patch applies a partial update to the draft's order fields.
func (h *DraftHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req draftPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		d.Apply(req.toPatch())
		return nil
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// Discard drops the wizard session without archiving anything.
func (h *DraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}
	h.drafts.Delete(id)
	metrics.ActiveDrafts.Set(float64(h.drafts.Count()))
	w.WriteHeader(http.StatusNoContent)
}

// SelectClient looks the client up in the branch directory and attaches it
// to the draft. Switching clients resets the entered notification number.
func (h *DraftHandler) SelectClient(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		ClientID string `json:"client_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client_id")
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

	debt := decimal.Zero
	if client.Debt.Valid {
		if val, verr := client.Debt.Value(); verr == nil && val != nil {
			debt, _ = decimal.NewFromString(val.(string))
		}
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		d.SelectClient(draft.ClientRef{
			ID:             client.ID.String(),
			Name:           client.Name,
			Phone:          client.Phone,
			CardNumber:     textOrEmpty(client.CardNumber),
			Debt:           debt,
			DiscountScheme: textOrEmpty(client.DiscountScheme),
		})
		return nil
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// AddComment appends a wizard comment attributed to the caller.
func (h *DraftHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	var userID, userName string
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		userID = claims.UserID.String()
		if user, err := h.store.GetUserByID(r.Context(), claims.UserID); err == nil {
			userName = user.Name
		}
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		d.AddComment(draft.Comment{UserID: userID, UserName: userName, Text: req.Text})
		return nil
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// --- Service sub-editor ---

// StartServiceEdit opens the scratch service. With a catalog_id the scratch
// is seeded from the catalog entry, without one the fallback editor opens.
func (h *DraftHandler) StartServiceEdit(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		CatalogID string `json:"catalog_id"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var pick *draft.CatalogPick
	if req.CatalogID != "" {
		catalogID, err := uuid.Parse(req.CatalogID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid catalog_id")
			return
		}
		item, err := h.store.GetCatalogItem(r.Context(), database.GetCatalogItemParams{ID: catalogID, BranchID: bid})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusNotFound, "catalog item not found")
				return
			}
			log.Printf("ERROR: get catalog item: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		price := decimal.Zero
		if item.Price.Valid {
			if val, verr := item.Price.Value(); verr == nil && val != nil {
				price, _ = decimal.NewFromString(val.(string))
			}
		}
		pick = &draft.CatalogPick{
			ID:    item.ID.String(),
			Name:  item.Name,
			Group: item.GroupName,
			Price: price,
		}
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		if pick != nil {
			d.StartServiceEdit(*pick)
		} else {
			d.InitServiceEdit()
		}
		return nil
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// serviceUpdateRequest carries scratch edits. Numeric fields arrive as
// strings because the UI sends whatever is in the input box; a blank string
// means "cleared" and coerces to zero.
type serviceUpdateRequest struct {
	Quantity     *string   `json:"quantity"`
	Coefficient  *string   `json:"coefficient"`
	TagNumber    *string   `json:"tag_number"`
	PriceInput   *string   `json:"price_input"`
	Discount     *string   `json:"discount"`
	Markup       *string   `json:"markup"`
	Description  *string   `json:"description"`
	ExtraOptions *[]string `json:"extra_options"`
	Wear         *string   `json:"wear"`
	Conditions   *[]string `json:"conditions"`
	Marking      *[]string `json:"marking"`
	LabelNote    *string   `json:"label_note"`
}

func (req serviceUpdateRequest) toPatch() (draft.ServicePatch, error) {
	p := draft.ServicePatch{
		TagNumber:    req.TagNumber,
		Markup:       req.Markup,
		Description:  req.Description,
		ExtraOptions: req.ExtraOptions,
		Wear:         req.Wear,
		Conditions:   req.Conditions,
		Marking:      req.Marking,
		LabelNote:    req.LabelNote,
	}
	if req.Quantity != nil {
		q, err := coerceInt(*req.Quantity)
		if err != nil {
			return p, err
		}
		p.Quantity = &q
	}
	if req.Coefficient != nil {
		c, err := coerceDecimal(*req.Coefficient)
		if err != nil {
			return p, err
		}
		p.Coefficient = &c
	}
	if req.PriceInput != nil {
		v, err := coerceDecimal(*req.PriceInput)
		if err != nil {
			return p, err
		}
		p.PriceInput = &v
	}
	if req.Discount != nil {
		v, err := coerceDecimal(*req.Discount)
		if err != nil {
			return p, err
		}
		p.Discount = &v
	}
	return p, nil
}

// UpdateService merges edits into the scratch service.
func (h *DraftHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req serviceUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid numeric field")
		return
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		return d.UpdateSelected(patch)
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// CommitService moves the scratch service into the committed list.
func (h *DraftHandler) CommitService(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		return d.CommitService()
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// CancelServiceEdit discards the scratch service.
func (h *DraftHandler) CancelServiceEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		d.CancelServiceEdit()
		return nil
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// AddPhotos attaches uploaded photo references to the scratch service.
func (h *DraftHandler) AddPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		Photos []string `json:"photos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Photos) == 0 {
		writeError(w, http.StatusBadRequest, "photos are required")
		return
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		return d.AddPhotos(req.Photos)
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// BeginPhotoSession snapshots the current photo set.
func (h *DraftHandler) BeginPhotoSession(w http.ResponseWriter, r *http.Request) {
	h.mutateSelected(w, r, func(d *draft.Draft) error {
		return d.BeginPhotoSession()
	})
}

// CancelPhotoSession blocklists photos added since the session began.
func (h *DraftHandler) CancelPhotoSession(w http.ResponseWriter, r *http.Request) {
	h.mutateSelected(w, r, func(d *draft.Draft) error {
		return d.CancelPhotoSession()
	})
}

// BlockPhotos marks photos for exclusion from the final set.
func (h *DraftHandler) BlockPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		Photos []string `json:"photos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		return d.AddToPhotoBlockList(req.Photos)
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// UnblockPhoto removes a single photo from the block list.
func (h *DraftHandler) UnblockPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		Photo string `json:"photo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Photo == "" {
		writeError(w, http.StatusBadRequest, "photo is required")
		return
	}

	d, err := h.drafts.Mutate(id, func(d *draft.Draft) error {
		return d.RemoveFromPhotoBlockList(req.Photo)
	})
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

// ClearBlockList empties the block list.
func (h *DraftHandler) ClearBlockList(w http.ResponseWriter, r *http.Request) {
	h.mutateSelected(w, r, func(d *draft.Draft) error {
		return d.ClearPhotoBlockList()
	})
}

// Complete archives the draft as a finished order.
func (h *DraftHandler) Complete(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid branch ID")
		return
	}
	id, ok := draftID(w, r)
	if !ok {
		return
	}

	var req struct {
		PaymentMethod  string `json:"payment_method"`
		AmountReceived string `json:"amount_received"`
		ChangeAmount   string `json:"change_amount"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.finalizer.Finalize(r.Context(), service.FinalizeRequest{
		DraftID:        id,
		BranchID:       bid,
		PaymentMethod:  req.PaymentMethod,
		AmountReceived: req.AmountReceived,
		ChangeAmount:   req.ChangeAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, draft.ErrNotFound):
			writeError(w, http.StatusNotFound, "draft not found")
		case errors.Is(err, service.ErrNoClient),
			errors.Is(err, service.ErrNoServices),
			errors.Is(err, service.ErrNoOrderNumber),
			errors.Is(err, service.ErrBadClientID),
			errors.Is(err, service.ErrBadPayment):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Printf("ERROR: finalize draft: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	metrics.ActiveDrafts.Set(float64(h.drafts.Count()))

	writeJSON(w, http.StatusCreated, toOrderResponse(result.Order))
}

// --- Helpers ---

func draftID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid draft ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *DraftHandler) loadDraft(w http.ResponseWriter, r *http.Request) (*draft.Draft, bool) {
	id, ok := draftID(w, r)
	if !ok {
		return nil, false
	}
	d, err := h.drafts.Get(id)
	if err != nil {
		h.writeDraftError(w, err)
		return nil, false
	}
	return d, true
}

func (h *DraftHandler) mutateSelected(w http.ResponseWriter, r *http.Request, fn func(*draft.Draft) error) {
	id, ok := draftID(w, r)
	if !ok {
		return
	}
	d, err := h.drafts.Mutate(id, fn)
	if err != nil {
		h.writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(d))
}

func (h *DraftHandler) writeDraftError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, draft.ErrNotFound):
		writeError(w, http.StatusNotFound, "draft not found")
	case errors.Is(err, draft.ErrNoServiceEdit):
		writeError(w, http.StatusConflict, "no service is being edited")
	case errors.Is(err, draft.ErrServiceIncomplete):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("ERROR: draft operation: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func coerceInt(s string) (int32, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	return int32(d.IntPart()), nil
}

func coerceDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
