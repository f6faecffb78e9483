package masterdata

import (
	"errors"
	"time"
)

// Supplier represents a pharmacy supplier.
type Supplier struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	GSTIN     string    `json:"gstin"`
	Phone     string    `json:"phone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ReturnReason is a configurable purchase-return reason.
type ReturnReason struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Label    string `json:"label"`
	IsActive bool   `json:"is_active"`
}

// LookupMaps carries the id→label tables consumed by the returns pipeline.
type LookupMaps struct {
	Reasons   map[int64]string `json:"reasons"`
	Suppliers map[int64]string `json:"suppliers"`
}

// ListFilters represents standard list page filters.
type ListFilters struct {
	Search   string
	IsActive *bool
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("masterdata: invalid input")
)
