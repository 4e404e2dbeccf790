// Package resource holds the shared pieces of ClassKit's encrypted resource
// model: the opaque blob type, ID generation, and the tenant-deny sentinel.
//
// Rosters and seating charts arrive already encrypted by the client. The
// server stores ciphertext and nonce as opaque strings and never decodes,
// inspects, or logs them. Anything that would require reading the payload
// (search, validation of its contents, dedup) is impossible on purpose.
package resource

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is the single deny error for resource access. A resource that
// does not exist and a resource owned by another tenant both return this, so
// responses never confirm that a given ID exists somewhere.
var ErrNotFound = errors.New("resource not found")

// Blob is a client-encrypted payload. Both fields are opaque to the server;
// the client is responsible for encoding (base64 in practice) and decryption.
type Blob struct {
	Ciphertext string `json:"encrypted_data"`
	Nonce      string `json:"encryption_iv"`
}

// Empty reports whether the blob carries no payload at all.
func (b Blob) Empty() bool {
	return b.Ciphertext == "" && b.Nonce == ""
}

// NewID generates a resource identifier. UUIDs keep IDs unguessable, which
// matters less than tenant scoping but costs nothing.
func NewID() string {
	return uuid.NewString()
}
