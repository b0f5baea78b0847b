package draft

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func testDefaults() Defaults {
	return Defaults{
		ReceiverID:          "user_receiver",
		WarehouseID:         "warehouse_main",
		DeliveryWarehouseID: "warehouse_delivery",
		CompanyID:           "company_main",
		Now:                 time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestNewSeedsDefaults(t *testing.T) {
	d := New(uuid.New(), testDefaults())

	if d.ReceiveDate != "2025-03-14" {
		t.Errorf("ReceiveDate = %q, want 2025-03-14", d.ReceiveDate)
	}
	if d.DeliveryDate != "2025-03-18" {
		t.Errorf("DeliveryDate = %q, want 2025-03-18 (4 days out)", d.DeliveryDate)
	}
	if d.ReceiveTime != "09:30" {
		t.Errorf("ReceiveTime = %q, want 09:30", d.ReceiveTime)
	}
	if !strings.HasPrefix(d.OrderNumber, "250314-") || len(d.OrderNumber) != 10 {
		t.Errorf("OrderNumber = %q, want 250314-NNN", d.OrderNumber)
	}
	if d.UrgencyType != "normal" {
		t.Errorf("UrgencyType = %q, want normal", d.UrgencyType)
	}
	if d.WarehouseID != "warehouse_main" || d.ReceiverID != "user_receiver" {
		t.Errorf("configuration defaults not copied: %+v", d)
	}
}

func TestNewOrderTag(t *testing.T) {
	first := New(uuid.New(), Defaults{FirstOrder: true})
	if first.TagNumber != FirstOrderTag {
		t.Errorf("first order tag = %q, want %q", first.TagNumber, FirstOrderTag)
	}

	later := New(uuid.New(), Defaults{})
	if !regexp.MustCompile(`^\d{11}$`).MatchString(later.TagNumber) {
		t.Errorf("tag = %q, want 11 digits", later.TagNumber)
	}
}

func TestSelectClientResetsNotificationNumber(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.SelectClient(ClientRef{ID: "c1", Name: "Anna", Phone: "+100"})
	d.NotificationNumber = "5550001"

	// Re-selecting the same client keeps the entered number.
	d.SelectClient(ClientRef{ID: "c1", Name: "Anna", Phone: "+100"})
	if d.NotificationNumber != "5550001" {
		t.Errorf("same client reset the number: %q", d.NotificationNumber)
	}

	d.SelectClient(ClientRef{ID: "c2", Name: "Boris", Phone: "+200"})
	if d.NotificationNumber != "" {
		t.Errorf("new client kept stale number %q", d.NotificationNumber)
	}
}

func TestApplyPatch(t *testing.T) {
	d := New(uuid.New(), testDefaults())

	setting := 2
	number := "5551234"
	urgent := "urgent"
	d.Apply(Patch{
		NotificationSetting: &setting,
		NotificationNumber:  &number,
		UrgencyType:         &urgent,
	})

	if d.NotificationSetting != 2 || d.NotificationNumber != "5551234" {
		t.Errorf("notification fields not applied: %+v", d)
	}
	if d.UrgencyType != "urgent" {
		t.Errorf("UrgencyType = %q", d.UrgencyType)
	}
	if d.ReceiveDate != "2025-03-14" {
		t.Errorf("untouched field changed: ReceiveDate = %q", d.ReceiveDate)
	}
}

func TestCloneIsolation(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.StartServiceEdit(CatalogPick{ID: "cat1", Name: "Coat", Price: decimal.NewFromInt(500)})
	if err := d.CommitService(); err != nil {
		t.Fatalf("CommitService: %v", err)
	}
	d.AddComment(Comment{UserID: "u1", Text: "handle with care"})

	c := d.Clone()
	c.Services[0].Name = "changed"
	c.Services[0].Photos = append(c.Services[0].Photos, "p.jpg")
	c.Comments[0].Text = "changed"

	if d.Services[0].Name != "Coat" {
		t.Error("clone shares service backing array with original")
	}
	if len(d.Services[0].Photos) != 0 {
		t.Error("clone shares photo slice with original")
	}
	if d.Comments[0].Text != "handle with care" {
		t.Error("clone shares comments with original")
	}
}

func TestAddCommentFillsIDAndDate(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.AddComment(Comment{UserID: "u1", UserName: "Olga", Text: "rush"})

	c := d.Comments[0]
	if c.ID == "" {
		t.Error("comment ID not assigned")
	}
	if c.Date.IsZero() {
		t.Error("comment date not assigned")
	}
}
