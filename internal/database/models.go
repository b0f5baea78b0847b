package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// User is a staff member of a branch. Receivers are the users selectable in
// the wizard's "receiver" dropdown.
type User struct {
	ID           uuid.UUID
	BranchID     uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Client is a directory entry of the dry-cleaning business.
type Client struct {
	ID             uuid.UUID
	BranchID       uuid.UUID
	Name           string
	Phone          string
	CardNumber     pgtype.Text
	Debt           pgtype.Numeric
	DiscountScheme pgtype.Text
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CatalogItem is one browsable entry of the service catalog.
type CatalogItem struct {
	ID        uuid.UUID
	BranchID  uuid.UUID
	Name      string
	GroupName string
	Price     pgtype.Numeric
	IsActive  bool
	CreatedAt time.Time
}

// Warehouse and Company are lookup rows referenced by opaque text ids, the
// way the source system stores them in its business configuration.
type Warehouse struct {
	ID       string
	BranchID uuid.UUID
	Name     string
}

type Company struct {
	ID       string
	BranchID uuid.UUID
	Name     string
}

// Order is one archived (finalized) order. Client display fields are
// denormalized at finalization time; receive/delivery dates and times keep
// the display formatting they had in the wizard.
type Order struct {
	ID          uuid.UUID
	BranchID    uuid.UUID
	OrderNumber string
	TagNumber   string
	PrimaryTag  string
	Status      string

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

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderService is one committed service line of an archived order.
type OrderService struct {
	ID           uuid.UUID
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

// OrderComment is one remark attached to an order during the wizard or later.
type OrderComment struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	UserID    pgtype.UUID
	UserName  string
	Body      string
	CreatedAt time.Time
}
