package draft

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestStoreCreateGet(t *testing.T) {
	s := NewStore()
	branch := uuid.New()
	d := s.Create(branch, testDefaults())

	got, err := s.Get(d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.BranchID != branch {
		t.Errorf("BranchID = %s, want %s", got.BranchID, branch)
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
}

func TestStoreGetUnknown(t *testing.T) {
	s := NewStore()
	if _, err := s.Get(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreGetReturnsSnapshot(t *testing.T) {
	s := NewStore()
	d := s.Create(uuid.New(), testDefaults())

	snap, err := s.Get(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	snap.SelectClient(ClientRef{ID: "c1", Name: "Anna"})
	snap.Services = append(snap.Services, Service{Name: "rogue"})

	fresh, err := s.Get(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Client.ID != "" || len(fresh.Services) != 0 {
		t.Error("mutating a snapshot leaked into the stored draft")
	}
}

func TestStoreMutate(t *testing.T) {
	s := NewStore()
	d := s.Create(uuid.New(), testDefaults())

	got, err := s.Mutate(d.ID, func(d *Draft) error {
		d.SelectClient(ClientRef{ID: "c1", Name: "Anna"})
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if got.Client.ID != "c1" {
		t.Errorf("snapshot client = %q, want c1", got.Client.ID)
	}

	fresh, err := s.Get(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Client.ID != "c1" {
		t.Error("mutation not persisted")
	}
}

func TestStoreMutateError(t *testing.T) {
	s := NewStore()
	d := s.Create(uuid.New(), testDefaults())

	if _, err := s.Mutate(d.ID, func(d *Draft) error {
		return d.CommitService()
	}); !errors.Is(err, ErrNoServiceEdit) {
		t.Errorf("err = %v, want ErrNoServiceEdit", err)
	}

	if _, err := s.Mutate(uuid.New(), func(d *Draft) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreSiblingIsolation(t *testing.T) {
	s := NewStore()
	branch := uuid.New()
	a := s.Create(branch, testDefaults())
	b := s.Create(branch, testDefaults())

	if _, err := s.Mutate(a.ID, func(d *Draft) error {
		d.SelectClient(ClientRef{ID: "c1", Name: "Anna"})
		d.StartServiceEdit(CatalogPick{ID: "cat1", Name: "Coat", Price: decimal.NewFromInt(500)})
		return d.CommitService()
	}); err != nil {
		t.Fatal(err)
	}

	other, err := s.Get(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if other.Client.ID != "" || len(other.Services) != 0 {
		t.Error("mutating one draft affected a sibling")
	}
}

func TestStoreClaimIsExclusive(t *testing.T) {
	s := NewStore()
	d := s.Create(uuid.New(), testDefaults())

	claimed, err := s.Claim(d.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed.ID != d.ID {
		t.Errorf("claimed ID = %s, want %s", claimed.ID, d.ID)
	}
	if _, err := s.Get(d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after claim: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Claim(d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Claim: err = %v, want ErrNotFound", err)
	}
}

func TestStoreClaimUnknown(t *testing.T) {
	s := NewStore()
	if _, err := s.Claim(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreRestore(t *testing.T) {
	s := NewStore()
	d := s.Create(uuid.New(), testDefaults())

	claimed, err := s.Claim(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	s.Restore(claimed)

	got, err := s.Get(d.ID)
	if err != nil {
		t.Fatalf("Get after restore: %v", err)
	}
	if got.ID != d.ID {
		t.Errorf("restored ID = %s, want %s", got.ID, d.ID)
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	d := s.Create(uuid.New(), testDefaults())

	s.Delete(d.ID)
	if _, err := s.Get(d.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}

	// Deleting again is harmless.
	s.Delete(d.ID)
}
