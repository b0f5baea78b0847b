// Package draft holds in-progress wizard orders. A Draft lives in memory for
// the lifetime of one order-creation session; on completion it is converted
// into an archived order and discarded.
package draft

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by draft operations.
var (
	ErrNotFound          = errors.New("draft not found")
	ErrNoServiceEdit     = errors.New("no service is being edited")
	ErrServiceIncomplete = errors.New("service requires quantity > 0, price > 0 and a tag number")
)

// ClientRef is the denormalized client selection. An empty ID means no
// client has been chosen yet.
type ClientRef struct {
	ID             string
	Name           string
	Phone          string
	CardNumber     string
	Debt           decimal.Decimal
	DiscountScheme string
}

// CatalogPick carries a catalog browser selection into the service editor
// before a full Service is materialized.
type CatalogPick struct {
	ID    string
	Name  string
	Group string
	Price decimal.Decimal
}

// Service is one billable line item of the order. PriceInput starts as a
// copy of the catalog price and stays editable until commit.
type Service struct {
	ID           string
	Name         string
	Group        string
	Price        decimal.Decimal
	Quantity     int32
	Coefficient  decimal.Decimal
	TagNumber    string
	PriceInput   decimal.Decimal
	Discount     decimal.Decimal
	Markup       string
	Description  string
	ExtraOptions []string
	Wear         string
	Conditions   []string
	Marking      []string
	LabelNote    string
	Photos       []string

	// PhotoBlockList marks photos excluded from the final set without
	// deleting them at the upload source.
	PhotoBlockList []string

	// photoBaseline is the photo set at the start of the current photo
	// session; cancelling blocklists everything added since.
	photoBaseline []string
}

// Comment is one remark left during the wizard.
type Comment struct {
	ID       string
	UserID   string
	UserName string
	Date     time.Time
	Text     string
}

// Draft is the single mutable record behind one wizard session.
type Draft struct {
	ID       uuid.UUID
	BranchID uuid.UUID

	Client              ClientRef
	NotificationSetting int // 0 = not chosen yet
	NotificationNumber  string
	NotificationsAgree  bool
	ReceiptAgree        bool
	AdvertAgree         bool

	OrderNumber  string
	TagNumber    string
	ReceiveDate  string
	DeliveryDate string
	ReceiveTime  string
	DeliveryTime string

	WarehouseID         string
	DeliveryWarehouseID string
	CompanyID           string
	ReceiverID          string
	UrgencyType         string
	Discount            string
	DiscountScheme      string
	Comment             string
	IsReturn            bool
	IsPartnerOrder      bool

	Services []Service
	Selected *Service
	TempInfo *CatalogPick
	Comments []Comment

	CreatedAt time.Time
}

// SelectClient replaces the client selection and drops any previously
// entered notification number when the new client differs.
func (d *Draft) SelectClient(c ClientRef) {
	if d.Client.ID != c.ID {
		d.NotificationNumber = ""
	}
	d.Client = c
}

// AddComment appends a wizard comment.
func (d *Draft) AddComment(c Comment) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Date.IsZero() {
		c.Date = time.Now()
	}
	d.Comments = append(d.Comments, c)
}

// Patch is a partial update of the draft's scalar fields. Nil fields are
// left untouched.
type Patch struct {
	NotificationSetting *int
	NotificationNumber  *string
	NotificationsAgree  *bool
	ReceiptAgree        *bool
	AdvertAgree         *bool

	TagNumber    *string
	ReceiveDate  *string
	DeliveryDate *string
	ReceiveTime  *string
	DeliveryTime *string

	WarehouseID         *string
	DeliveryWarehouseID *string
	CompanyID           *string
	ReceiverID          *string
	UrgencyType         *string
	Discount            *string
	DiscountScheme      *string
	Comment             *string
	IsReturn            *bool
	IsPartnerOrder      *bool
}

// Apply merges the patch into the draft.
func (d *Draft) Apply(p Patch) {
	if p.NotificationSetting != nil {
		d.NotificationSetting = *p.NotificationSetting
	}
	if p.NotificationNumber != nil {
		d.NotificationNumber = *p.NotificationNumber
	}
	if p.NotificationsAgree != nil {
		d.NotificationsAgree = *p.NotificationsAgree
	}
	if p.ReceiptAgree != nil {
		d.ReceiptAgree = *p.ReceiptAgree
	}
	if p.AdvertAgree != nil {
		d.AdvertAgree = *p.AdvertAgree
	}
	if p.TagNumber != nil {
		d.TagNumber = *p.TagNumber
	}
	if p.ReceiveDate != nil {
		d.ReceiveDate = *p.ReceiveDate
	}
	if p.DeliveryDate != nil {
		d.DeliveryDate = *p.DeliveryDate
	}
	if p.ReceiveTime != nil {
		d.ReceiveTime = *p.ReceiveTime
	}
	if p.DeliveryTime != nil {
		d.DeliveryTime = *p.DeliveryTime
	}
	if p.WarehouseID != nil {
		d.WarehouseID = *p.WarehouseID
	}
	if p.DeliveryWarehouseID != nil {
		d.DeliveryWarehouseID = *p.DeliveryWarehouseID
	}
	if p.CompanyID != nil {
		d.CompanyID = *p.CompanyID
	}
	if p.ReceiverID != nil {
		d.ReceiverID = *p.ReceiverID
	}
	if p.UrgencyType != nil {
		d.UrgencyType = *p.UrgencyType
	}
	if p.Discount != nil {
		d.Discount = *p.Discount
	}
	if p.DiscountScheme != nil {
		d.DiscountScheme = *p.DiscountScheme
	}
	if p.Comment != nil {
		d.Comment = *p.Comment
	}
	if p.IsReturn != nil {
		d.IsReturn = *p.IsReturn
	}
	if p.IsPartnerOrder != nil {
		d.IsPartnerOrder = *p.IsPartnerOrder
	}
}

// Clone returns a deep copy. Snapshots handed out by the store must not
// alias the live draft's slices.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Services = make([]Service, len(d.Services))
	for i, s := range d.Services {
		c.Services[i] = cloneService(s)
	}
	if d.Selected != nil {
		s := cloneService(*d.Selected)
		c.Selected = &s
	}
	if d.TempInfo != nil {
		t := *d.TempInfo
		c.TempInfo = &t
	}
	c.Comments = append([]Comment(nil), d.Comments...)
	return &c
}

func cloneService(s Service) Service {
	s.ExtraOptions = append([]string(nil), s.ExtraOptions...)
	s.Conditions = append([]string(nil), s.Conditions...)
	s.Marking = append([]string(nil), s.Marking...)
	s.Photos = append([]string(nil), s.Photos...)
	s.PhotoBlockList = append([]string(nil), s.PhotoBlockList...)
	s.photoBaseline = append([]string(nil), s.photoBaseline...)
	return s
}
