package draft

import "github.com/cleanline-pos/api/internal/enum"

// Step identifies one wizard step.
type Step string

const (
	StepClient   Step = "client"
	StepOrder    Step = "order"
	StepServices Step = "services"
	StepProducts Step = "products"
	StepPayment  Step = "payment"
	StepComments Step = "comments"
	StepComplete Step = "complete"
)

// Gate is the evaluated state of one wizard step. Unlocked means the step
// can be entered; Completed means its requirements are satisfied.
type Gate struct {
	Step      Step   `json:"step"`
	Label     string `json:"label"`
	Unlocked  bool   `json:"unlocked"`
	Completed bool   `json:"completed"`
}

// EvaluateGates derives all step gates from the draft alone. It never
// mutates the draft.
func EvaluateGates(d *Draft) []Gate {
	hasClient := d.Client.ID != ""

	// The order step needs a client, a chosen notification setting, and a
	// sufficiently long number when notifications go to a new number.
	orderUnlocked := hasClient && d.NotificationSetting != 0 &&
		(d.NotificationSetting != enum.NotificationNewNumber ||
			len(d.NotificationNumber) >= enum.MinNotificationNumberLen)

	servicesUnlocked := orderUnlocked && d.ReceiverID != ""
	hasServices := len(d.Services) > 0
	tailUnlocked := servicesUnlocked && hasServices

	return []Gate{
		{Step: StepClient, Label: "Client", Unlocked: true, Completed: hasClient},
		// Completion tracks the receiver alone, even while the step is
		// still locked.
		{Step: StepOrder, Label: "Order", Unlocked: orderUnlocked, Completed: d.ReceiverID != ""},
		{Step: StepServices, Label: "Services", Unlocked: servicesUnlocked, Completed: hasServices},
		// Product sales are not part of the wizard; the step is shown
		// disabled and counted as done so it never blocks completion.
		{Step: StepProducts, Label: "Products", Unlocked: false, Completed: true},
		{Step: StepPayment, Label: "Payment", Unlocked: tailUnlocked, Completed: false},
		{Step: StepComments, Label: "Comments", Unlocked: tailUnlocked, Completed: len(d.Comments) > 0},
		{Step: StepComplete, Label: "Complete", Unlocked: tailUnlocked, Completed: false},
	}
}
