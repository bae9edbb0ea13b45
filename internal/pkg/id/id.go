package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New returns a ULID string. IDs sort by creation time, which keeps
// user and nomination listings in signup order without a sort key.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
