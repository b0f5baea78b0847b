package draft

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestStartServiceEditSeedsFromPick(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	pick := CatalogPick{ID: "cat1", Name: "Coat", Group: "Outerwear", Price: decimal.NewFromInt(500)}
	d.StartServiceEdit(pick)

	s := d.Selected
	if s == nil {
		t.Fatal("no scratch service after StartServiceEdit")
	}
	if s.Quantity != 1 || !s.Coefficient.Equal(decimal.NewFromInt(1)) {
		t.Errorf("quantity/coefficient = %d/%s, want 1/1", s.Quantity, s.Coefficient)
	}
	if !s.PriceInput.Equal(pick.Price) {
		t.Errorf("PriceInput = %s, want catalog price %s", s.PriceInput, pick.Price)
	}
	if !regexp.MustCompile(`^00-\d{5}$`).MatchString(s.TagNumber) {
		t.Errorf("tag = %q, want 00-NNNNN", s.TagNumber)
	}
	if s.Markup != "none" || !s.Discount.IsZero() {
		t.Errorf("markup/discount = %q/%s, want none/0", s.Markup, s.Discount)
	}
	if d.TempInfo == nil || d.TempInfo.ID != "cat1" {
		t.Errorf("TempInfo = %+v, want the pick", d.TempInfo)
	}
}

func TestInitServiceEditFallbackTag(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.InitServiceEdit()

	if d.Selected == nil {
		t.Fatal("no scratch service after InitServiceEdit")
	}
	if !regexp.MustCompile(`^123-\d{5}$`).MatchString(d.Selected.TagNumber) {
		t.Errorf("tag = %q, want 123-NNNNN", d.Selected.TagNumber)
	}
}

func TestCommitServiceValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Service)
		wantOK bool
	}{
		{"complete", func(s *Service) {}, true},
		{"zero quantity", func(s *Service) { s.Quantity = 0 }, false},
		{"zero price", func(s *Service) { s.PriceInput = decimal.Zero }, false},
		{"empty tag", func(s *Service) { s.TagNumber = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(uuid.New(), testDefaults())
			d.StartServiceEdit(CatalogPick{ID: "cat1", Name: "Coat", Price: decimal.NewFromInt(500)})
			tt.mutate(d.Selected)

			err := d.CommitService()
			if tt.wantOK {
				if err != nil {
					t.Fatalf("CommitService: %v", err)
				}
				if len(d.Services) != 1 || d.Selected != nil || d.TempInfo != nil {
					t.Errorf("commit did not clear editor state: %+v", d)
				}
				return
			}
			if !errors.Is(err, ErrServiceIncomplete) {
				t.Errorf("err = %v, want ErrServiceIncomplete", err)
			}
			if len(d.Services) != 0 {
				t.Error("incomplete service was committed")
			}
			if d.Selected == nil {
				t.Error("failed commit discarded the scratch service")
			}
		})
	}
}

func TestCommitServiceFiltersBlockedPhotos(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.StartServiceEdit(CatalogPick{ID: "cat1", Name: "Coat", Price: decimal.NewFromInt(500)})
	if err := d.AddPhotos([]string{"a.jpg", "b.jpg", "c.jpg"}); err != nil {
		t.Fatal(err)
	}
	if err := d.AddToPhotoBlockList([]string{"b.jpg"}); err != nil {
		t.Fatal(err)
	}
	if err := d.CommitService(); err != nil {
		t.Fatal(err)
	}

	got := d.Services[0].Photos
	if len(got) != 2 || got[0] != "a.jpg" || got[1] != "c.jpg" {
		t.Errorf("photos = %v, want [a.jpg c.jpg]", got)
	}
	if d.Services[0].PhotoBlockList != nil {
		t.Error("block list carried into committed service")
	}
}

func TestCancelServiceEditLeavesCommittedAlone(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.StartServiceEdit(CatalogPick{ID: "cat1", Name: "Coat", Price: decimal.NewFromInt(500)})
	if err := d.CommitService(); err != nil {
		t.Fatal(err)
	}

	d.StartServiceEdit(CatalogPick{ID: "cat2", Name: "Dress", Price: decimal.NewFromInt(300)})
	qty := int32(5)
	if err := d.UpdateSelected(ServicePatch{Quantity: &qty}); err != nil {
		t.Fatal(err)
	}
	d.CancelServiceEdit()

	if len(d.Services) != 1 || d.Services[0].Name != "Coat" {
		t.Errorf("cancel touched committed services: %+v", d.Services)
	}
	if d.Selected != nil || d.TempInfo != nil {
		t.Error("cancel left editor state behind")
	}
}

func TestUpdateSelectedRequiresEditor(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	qty := int32(2)
	if err := d.UpdateSelected(ServicePatch{Quantity: &qty}); !errors.Is(err, ErrNoServiceEdit) {
		t.Errorf("err = %v, want ErrNoServiceEdit", err)
	}
	if err := d.AddPhotos([]string{"a.jpg"}); !errors.Is(err, ErrNoServiceEdit) {
		t.Errorf("AddPhotos err = %v, want ErrNoServiceEdit", err)
	}
}

func TestPhotoSessionCancelBlocklistsAdditions(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.StartServiceEdit(CatalogPick{ID: "cat1", Name: "Coat", Price: decimal.NewFromInt(500)})
	if err := d.AddPhotos([]string{"before.jpg"}); err != nil {
		t.Fatal(err)
	}

	if err := d.BeginPhotoSession(); err != nil {
		t.Fatal(err)
	}
	if err := d.AddPhotos([]string{"during1.jpg", "during2.jpg"}); err != nil {
		t.Fatal(err)
	}
	if err := d.CancelPhotoSession(); err != nil {
		t.Fatal(err)
	}

	bl := d.Selected.PhotoBlockList
	if len(bl) != 2 || bl[0] != "during1.jpg" || bl[1] != "during2.jpg" {
		t.Errorf("block list = %v, want the session additions only", bl)
	}

	if err := d.CommitService(); err != nil {
		t.Fatal(err)
	}
	got := d.Services[0].Photos
	if len(got) != 1 || got[0] != "before.jpg" {
		t.Errorf("photos = %v, want [before.jpg]", got)
	}
}

func TestPhotoBlockListDedupAndRemove(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.InitServiceEdit()

	if err := d.AddToPhotoBlockList([]string{"a.jpg", "a.jpg", "b.jpg"}); err != nil {
		t.Fatal(err)
	}
	if got := d.Selected.PhotoBlockList; len(got) != 2 {
		t.Errorf("block list = %v, want deduped [a.jpg b.jpg]", got)
	}

	if err := d.RemoveFromPhotoBlockList("a.jpg"); err != nil {
		t.Fatal(err)
	}
	if got := d.Selected.PhotoBlockList; len(got) != 1 || got[0] != "b.jpg" {
		t.Errorf("block list = %v, want [b.jpg]", got)
	}

	if err := d.ClearPhotoBlockList(); err != nil {
		t.Fatal(err)
	}
	if d.Selected.PhotoBlockList != nil {
		t.Error("clear left entries behind")
	}
}

func TestAddPhotosDedupes(t *testing.T) {
	d := New(uuid.New(), testDefaults())
	d.InitServiceEdit()
	if err := d.AddPhotos([]string{"a.jpg"}); err != nil {
		t.Fatal(err)
	}
	if err := d.AddPhotos([]string{"a.jpg", "b.jpg"}); err != nil {
		t.Fatal(err)
	}
	if got := d.Selected.Photos; len(got) != 2 {
		t.Errorf("photos = %v, want [a.jpg b.jpg]", got)
	}
}
