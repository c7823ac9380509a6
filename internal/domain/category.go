package domain

import "fmt"

// Category is one of the five independent audit domains. It is the routing
// key for every action plan write.
type Category string

const (
	CategoryResident    Category = "resident"
	CategoryCareFile    Category = "carefile"
	CategoryGovernance  Category = "governance"
	CategoryClinical    Category = "clinical"
	CategoryEnvironment Category = "environment"
)

// categories is the closed set, in board merge order.
var categories = [...]Category{
	CategoryResident,
	CategoryCareFile,
	CategoryGovernance,
	CategoryClinical,
	CategoryEnvironment,
}

// Categories returns the closed category set in board merge order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories[:])
	return out
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory resolves a raw tag, failing closed on anything outside the set.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("category %q: %w", raw, ErrUnresolvedCategory)
	}
	return c, nil
}
