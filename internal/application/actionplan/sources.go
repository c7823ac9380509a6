package actionplan

import "github.com/carehome-actionplans/internal/domain"

// Relation qualifies how the board's actor relates to the plans in a list.
type Relation string

const (
	RelationAssigned Relation = "assigned"
	RelationCreated  Relation = "created"
)

// Source names one list feeding the board.
type Source struct {
	Category domain.Category
	Relation Relation
	// Scoped assigned lists are filtered to the actor's organisational unit.
	Scoped bool
}

// DefaultSources is the board configuration: resident and care-file plans are
// unit-scoped assignments; the other categories also offer a creator view.
func DefaultSources() []Source {
	return []Source{
		{Category: domain.CategoryResident, Relation: RelationAssigned, Scoped: true},
		{Category: domain.CategoryCareFile, Relation: RelationAssigned, Scoped: true},
		{Category: domain.CategoryGovernance, Relation: RelationAssigned},
		{Category: domain.CategoryGovernance, Relation: RelationCreated},
		{Category: domain.CategoryClinical, Relation: RelationAssigned},
		{Category: domain.CategoryClinical, Relation: RelationCreated},
		{Category: domain.CategoryEnvironment, Relation: RelationAssigned},
		{Category: domain.CategoryEnvironment, Relation: RelationCreated},
	}
}
