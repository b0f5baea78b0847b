package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusCompleted  = "COMPLETED"
)

// ── Wizard notification preference ──
// 1: send to the client's phone on file, 2: send to a separately entered
// number, 3: no notifications.

const (
	NotificationClientPhone = 1
	NotificationNewNumber   = 2
	NotificationNone        = 3
)

// MinNotificationNumberLen is the shortest accepted "new number" value.
const MinNotificationNumberLen = 5

// ── User roles (CHECK constrained in DB) ──

const (
	UserRoleOwner    = "OWNER"
	UserRoleManager  = "MANAGER"
	UserRoleReceiver = "RECEIVER"
)

const (
	UrgencyNormal = "normal"
	UrgencyUrgent = "urgent"
)

// ── Configurable labels (no DB constraint) ──

const (
	MarkupNone    = "none"
	MarkupHandled = "handled"
	MarkupComplex = "complex"
)

const (
	DiscountSchemeNone    = "none"
	DiscountSchemeCard    = "111"
	DiscountSchemeWorkers = "worker"
)

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
)

// WearLevels are the fixed garment wear percentages selectable in the
// service editor.
var WearLevels = []string{"10%", "30%", "50%", "75%"}
