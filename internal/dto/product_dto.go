package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProductRequest creates a product, or finds it by (name, size, unit) on ensure.
type ProductRequest struct {
	Name         string      `json:"name"          validate:"required,max=120"`
	Material     string      `json:"material"      validate:"max=60"`
	Size         string      `json:"size"          validate:"max=40"`
	Unit         string      `json:"unit"          validate:"max=20"`
	OpeningStock NumericText `json:"opening_stock"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// EnsureResponse reports the resolved id and whether a row had to be created.
type EnsureResponse struct {
	ID      int64 `json:"id"`
	Created bool  `json:"created"`
}
