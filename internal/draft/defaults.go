package draft

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// FirstOrderTag is the fixed tag assigned to the very first order a branch
// ever creates. Later orders get a random 11-digit numeric tag.
const FirstOrderTag = "57437964351"

// Defaults seeds a new draft from business configuration. FirstOrder must
// reflect whether the archive is still empty; the caller reads it from the
// archive rather than the draft layer reaching across stores.
type Defaults struct {
	ReceiverID          string
	WarehouseID         string
	DeliveryWarehouseID string
	CompanyID           string
	UrgencyType         string
	FirstOrder          bool

	// Now overrides the clock; zero means time.Now().
	Now time.Time
}

// New creates a draft seeded with configuration defaults: receive date is
// today, delivery is four days out.
func New(branchID uuid.UUID, def Defaults) *Draft {
	now := def.Now
	if now.IsZero() {
		now = time.Now()
	}

	urgency := def.UrgencyType
	if urgency == "" {
		urgency = "normal"
	}

	return &Draft{
		ID:       uuid.New(),
		BranchID: branchID,

		OrderNumber:  newOrderNumber(now),
		TagNumber:    newOrderTag(def.FirstOrder),
		ReceiveDate:  now.Format("2006-01-02"),
		DeliveryDate: now.AddDate(0, 0, 4).Format("2006-01-02"),
		ReceiveTime:  now.Format("15:04"),

		WarehouseID:         def.WarehouseID,
		DeliveryWarehouseID: def.DeliveryWarehouseID,
		CompanyID:           def.CompanyID,
		ReceiverID:          def.ReceiverID,
		UrgencyType:         urgency,

		CreatedAt: now,
	}
}

// newOrderNumber formats YYMMDD-NNN with a random 3-digit suffix.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s-%03d", now.Format("060102"), rand.IntN(1000))
}

func newOrderTag(firstOrder bool) string {
	if firstOrder {
		return FirstOrderTag
	}
	return fmt.Sprintf("%011d", rand.Int64N(100_000_000_000))
}

// newServiceTag generates the tag for a service picked from the catalog.
func newServiceTag() string {
	return fmt.Sprintf("00-%05d", rand.IntN(100_000))
}

// fallbackServiceTag generates the tag used when the editor opens without a
// catalog pick.
func fallbackServiceTag() string {
	return fmt.Sprintf("123-%05d", rand.IntN(100_000))
}
