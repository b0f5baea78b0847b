package draft

import (
	"slices"

	"github.com/shopspring/decimal"
)

// StartServiceEdit seeds the scratch service from a catalog pick: quantity 1,
// coefficient 1, catalog price copied into the editable price, fresh tag.
func (d *Draft) StartServiceEdit(pick CatalogPick) {
	d.TempInfo = &pick
	d.Selected = &Service{
		ID:          pick.ID,
		Name:        pick.Name,
		Group:       pick.Group,
		Price:       pick.Price,
		Quantity:    1,
		Coefficient: decimal.NewFromInt(1),
		TagNumber:   newServiceTag(),
		PriceInput:  pick.Price,
		Markup:      "none",
	}
}

// InitServiceEdit opens the editor without a catalog pick (fallback path).
func (d *Draft) InitServiceEdit() {
	d.Selected = &Service{
		Quantity:    1,
		Coefficient: decimal.NewFromInt(1),
		TagNumber:   fallbackServiceTag(),
		Markup:      "none",
	}
}

// ServicePatch is a partial update of the scratch service. Numeric fields
// arrive already coerced: the HTTP layer turns blank mid-edit strings into
// zero values before building a patch.
type ServicePatch struct {
	Quantity     *int32
	Coefficient  *decimal.Decimal
	TagNumber    *string
	PriceInput   *decimal.Decimal
	Discount     *decimal.Decimal
	Markup       *string
	Description  *string
	ExtraOptions *[]string
	Wear         *string
	Conditions   *[]string
	Marking      *[]string
	LabelNote    *string
}

// UpdateSelected merges the patch into the scratch service.
func (d *Draft) UpdateSelected(p ServicePatch) error {
	if d.Selected == nil {
		return ErrNoServiceEdit
	}
	s := d.Selected
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	if p.Coefficient != nil {
		s.Coefficient = *p.Coefficient
	}
	if p.TagNumber != nil {
		s.TagNumber = *p.TagNumber
	}
	if p.PriceInput != nil {
		s.PriceInput = *p.PriceInput
	}
	if p.Discount != nil {
		s.Discount = *p.Discount
	}
	if p.Markup != nil {
		s.Markup = *p.Markup
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.ExtraOptions != nil {
		s.ExtraOptions = *p.ExtraOptions
	}
	if p.Wear != nil {
		s.Wear = *p.Wear
	}
	if p.Conditions != nil {
		s.Conditions = *p.Conditions
	}
	if p.Marking != nil {
		s.Marking = *p.Marking
	}
	if p.LabelNote != nil {
		s.LabelNote = *p.LabelNote
	}
	return nil
}

// CanCommitService reports whether the scratch service satisfies the commit
// preconditions. The UI uses it to disable Save.
func (d *Draft) CanCommitService() bool {
	s := d.Selected
	return s != nil && s.Quantity > 0 && s.PriceInput.IsPositive() && s.TagNumber != ""
}

// CommitService moves the scratch service into the committed list. Photos on
// the block list are dropped from the final set; the block list itself is
// not carried into the committed service.
func (d *Draft) CommitService() error {
	if d.Selected == nil {
		return ErrNoServiceEdit
	}
	if !d.CanCommitService() {
		return ErrServiceIncomplete
	}

	s := cloneService(*d.Selected)
	kept := s.Photos[:0]
	for _, p := range s.Photos {
		if !slices.Contains(s.PhotoBlockList, p) {
			kept = append(kept, p)
		}
	}
	s.Photos = kept
	s.PhotoBlockList = nil
	s.photoBaseline = nil

	d.Services = append(d.Services, s)
	d.Selected = nil
	d.TempInfo = nil
	return nil
}

// CancelServiceEdit discards the scratch service. The committed list is
// never touched.
func (d *Draft) CancelServiceEdit() {
	d.Selected = nil
	d.TempInfo = nil
}

// --- Photo session ---

// BeginPhotoSession records the current photo set so a later cancel can tell
// which photos were added during the session.
func (d *Draft) BeginPhotoSession() error {
	if d.Selected == nil {
		return ErrNoServiceEdit
	}
	d.Selected.photoBaseline = append([]string(nil), d.Selected.Photos...)
	return nil
}

// AddPhotos attaches uploaded photo references to the scratch service.
// Uploads happen on a side channel; the reference is recorded as-is.
func (d *Draft) AddPhotos(refs []string) error {
	if d.Selected == nil {
		return ErrNoServiceEdit
	}
	for _, r := range refs {
		if !slices.Contains(d.Selected.Photos, r) {
			d.Selected.Photos = append(d.Selected.Photos, r)
		}
	}
	return nil
}

// CancelPhotoSession blocklists every photo added since BeginPhotoSession,
// as if the user never added them. The uploads themselves are not reversed.
func (d *Draft) CancelPhotoSession() error {
	if d.Selected == nil {
		return ErrNoServiceEdit
	}
	var added []string
	for _, p := range d.Selected.Photos {
		if !slices.Contains(d.Selected.photoBaseline, p) {
			added = append(added, p)
		}
	}
	return d.AddToPhotoBlockList(added)
}

// AddToPhotoBlockList marks photos for exclusion, deduplicating.
func (d *Draft) AddToPhotoBlockList(photos []string) error {
	if d.Selected == nil {
		return ErrNoServiceEdit
	}
	for _, p := range photos {
		if !slices.Contains(d.Selected.PhotoBlockList, p) {
			d.Selected.PhotoBlockList = append(d.Selected.PhotoBlockList, p)
		}
	}
	return nil
}

// RemoveFromPhotoBlockList unmarks a single photo.
func (d *Draft) RemoveFromPhotoBlockList(photo string) error {
	if d.Selected == nil {
		return ErrNoServiceEdit
	}
	bl := d.Selected.PhotoBlockList[:0]
	for _, p := range d.Selected.PhotoBlockList {
		if p != photo {
			bl = append(bl, p)
		}
	}
	d.Selected.PhotoBlockList = bl
	return nil
}

// ClearPhotoBlockList unmarks everything.
func (d *Draft) ClearPhotoBlockList() error {
	if d.Selected == nil {
		return ErrNoServiceEdit
	}
	d.Selected.PhotoBlockList = nil
	return nil
}
