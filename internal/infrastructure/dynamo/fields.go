package dynamo

// DynamoDB attribute names used in key, condition and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldID                  = "action_plan_id"
	fieldStatus              = "status"
	fieldStatusComment       = "status_comment"
	fieldStatusUpdatedBy     = "status_updated_by"
	fieldStatusUpdatedByName = "status_updated_by_name"
	fieldCompletedAt         = "completed_at"
	fieldAssignedTo          = "assigned_to"
	fieldCreatedBy           = "created_by"
	fieldCreatedAt           = "created_at"
	fieldScopeID             = "scope_id"
	fieldViewed              = "viewed"
	fieldUpdatedAt           = "updated_at"
)

// GSIs present on every category table.
const (
	indexAssignedTo = "assigned_to-created_at-index"
	indexCreatedBy  = "created_by-created_at-index"
)
