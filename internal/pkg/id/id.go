package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string for a raised action plan. ULIDs sort by
// creation time, which keeps a partition's newest plans adjacent.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
