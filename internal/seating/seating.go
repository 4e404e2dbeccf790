// Package seating stores client-encrypted seating charts.
//
// A chart references a roster in the same tenant and carries two parts: a
// plaintext layout (grid shape, display metadata) that the server can read,
// and the seat assignments themselves as an opaque encrypted blob. The
// roster reference is fixed at creation; re-pointing a chart at a different
// roster would silently orphan its encrypted assignments.
package seating

import (
	"time"

	"github.com/classkit/classkit/internal/resource"
)

// Layout types.
const (
	LayoutGrid   = "grid"
	LayoutCustom = "custom"
)

// Layout describes the spatial arrangement of a chart. For grid layouts,
// Rows and Cols define the shape; custom layouts keep positions inside the
// encrypted blob and only record the type here.
type Layout struct {
	Type string `json:"type"`
	Rows int    `json:"rows,omitempty"`
	Cols int    `json:"cols,omitempty"`
}

// Valid reports whether the layout is well-formed.
func (l Layout) Valid() bool {
	switch l.Type {
	case LayoutGrid:
		return l.Rows > 0 && l.Cols > 0
	case LayoutCustom:
		return true
	default:
		return false
	}
}

// Chart is a named seating chart bound to one roster.
type Chart struct {
	ID            string `json:"id"`
	TenantID      string `json:"-"` // scoping only, never serialised
	CreatedBy     string `json:"-"`
	Name          string `json:"name"`
	RosterID      string `json:"roster_id"`
	Layout        Layout `json:"layout"`
	resource.Blob        // encrypted_data, encryption_iv
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Update carries a partial update. Nil fields keep their stored value.
// The roster reference is not updatable.
type Update struct {
	Name       *string
	Layout     *Layout
	Ciphertext *string
	Nonce      *string
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Name == nil && u.Layout == nil && u.Ciphertext == nil && u.Nonce == nil
}
