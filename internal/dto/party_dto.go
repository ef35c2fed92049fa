package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PartyRequest creates a customer or a supplier. The ensure endpoints take it
// too: lookup is by name, phone and address only fill a newly created row.
type PartyRequest struct {
	Name    string `json:"name"    validate:"required,max=120"`
	Phone   string `json:"phone"   validate:"max=30"`
	Address string `json:"address" validate:"max=250"`
}
