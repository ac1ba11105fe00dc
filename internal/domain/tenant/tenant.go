// Package tenant defines the tenant domain model. A tenant is the isolation
// boundary grouping records that belong to one organizational customer.
package tenant

import (
	"encoding/json"
	"strconv"
	"time"
)

// ID identifies a tenant. Backing stores may use numeric or string keys, so
// an ID normalizes to a number when the raw value parses as one; two IDs are
// equal when their normalized forms are equal.
type ID struct {
	raw     string
	num     int64
	numeric bool
}

// ParseID builds an ID from a raw signal value. Numeric parse is attempted
// first, falling back to the raw string.
func ParseID(s string) ID {
	if s == "" {
		return ID{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID{raw: s, num: n, numeric: true}
	}
	return ID{raw: s}
}

// IsZero reports whether the ID carries no value.
func (id ID) IsZero() bool {
	return id.raw == ""
}

// Equal compares two IDs by normalized value.
func (id ID) Equal(other ID) bool {
	if id.numeric && other.numeric {
		return id.num == other.num
	}
	return id.raw == other.raw
}

// Value returns the store-facing value: int64 for numeric IDs, string otherwise.
func (id ID) Value() any {
	if id.numeric {
		return id.num
	}
	return id.raw
}

func (id ID) String() string {
	return id.raw
}

// MarshalJSON encodes the ID as its raw value.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.raw)
}

// UnmarshalJSON decodes and re-normalizes an ID.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Tolerate numeric JSON values from stores with serial keys.
		var n int64
		if nerr := json.Unmarshal(data, &n); nerr != nil {
			return err
		}
		s = strconv.FormatInt(n, 10)
	}
	*id = ParseID(s)
	return nil
}

// In reports whether the ID equals any member of the set.
func (id ID) In(set []ID) bool {
	for _, other := range set {
		if id.Equal(other) {
			return true
		}
	}
	return false
}

// Tenant represents an isolated tenant in the system.
type Tenant struct {
	ID        ID        `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest holds the fields required to create a new tenant.
type CreateRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
}
