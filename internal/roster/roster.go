// Package roster stores client-encrypted class rosters.
//
// Only the roster name is readable server-side (for listings). The student
// data itself lives in an opaque ciphertext/nonce pair the server never
// decodes. Every operation is tenant-scoped: a roster belonging to another
// tenant is indistinguishable from one that does not exist.
package roster

import (
	"time"

	"github.com/classkit/classkit/internal/resource"
)

// Roster is a named, client-encrypted student list.
type Roster struct {
	ID            string `json:"id"`
	TenantID      string `json:"-"` // scoping only, never serialised
	CreatedBy     string `json:"-"`
	Name          string `json:"name"`
	resource.Blob        // encrypted_data, encryption_iv
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Update carries a partial update. Nil fields keep their stored value.
type Update struct {
	Name       *string
	Ciphertext *string
	Nonce      *string
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Name == nil && u.Ciphertext == nil && u.Nonce == nil
}
