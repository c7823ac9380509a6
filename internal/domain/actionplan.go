package domain

import "time"

// Priority is the display priority of an action plan.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ActionPlan is a remediation task raised against an audit finding.
// It is owned by exactly one category partition for its lifetime.
type ActionPlan struct {
	ID                  string     `json:"id" dynamodbav:"action_plan_id"`
	Category            Category   `json:"category" dynamodbav:"category"`
	Status              Status     `json:"status" dynamodbav:"status"`
	Priority            Priority   `json:"priority" dynamodbav:"priority"`
	Description         string     `json:"description" dynamodbav:"description"`
	TemplateName        string     `json:"template_name" dynamodbav:"template_name"`
	AuditID             string     `json:"audit_id,omitempty" dynamodbav:"audit_id,omitempty"`
	ScopeID             string     `json:"scope_id,omitempty" dynamodbav:"scope_id,omitempty"`
	AssignedTo          string     `json:"assigned_to" dynamodbav:"assigned_to"`
	AssignedToName      string     `json:"assigned_to_name" dynamodbav:"assigned_to_name"`
	CreatedBy           string     `json:"created_by" dynamodbav:"created_by"`
	CreatedByName       string     `json:"created_by_name" dynamodbav:"created_by_name"`
	DueDate             *time.Time `json:"due_date,omitempty" dynamodbav:"due_date,omitempty"`
	Viewed              bool       `json:"viewed" dynamodbav:"viewed"`
	StatusComment       *string    `json:"status_comment,omitempty" dynamodbav:"status_comment,omitempty"`
	StatusUpdatedBy     string     `json:"status_updated_by,omitempty" dynamodbav:"status_updated_by,omitempty"`
	StatusUpdatedByName string     `json:"status_updated_by_name,omitempty" dynamodbav:"status_updated_by_name,omitempty"`
	CompletedAt         *time.Time `json:"completed_at,omitempty" dynamodbav:"completed_at,omitempty"`
	CreatedAt           time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt           time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// IsOverdue reports whether p has a due date before now and is not completed.
// It is always derived, never stored.
func (p *ActionPlan) IsOverdue(now time.Time) bool {
	return p.DueDate != nil && p.DueDate.Before(now) && p.Status != StatusCompleted
}

// StatusUpdate is the payload of a status write.
type StatusUpdate struct {
	Status    Status
	Comment   *string
	ActorID   string
	ActorName string
}

// StatusChangeRequest is the body of PUT /action-plans/{category}/{id}/status.
type StatusChangeRequest struct {
	Status  Status  `json:"status" validate:"required,oneof=pending in_progress completed"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// RaiseRequest is the body of POST /action-plans/{category}.
type RaiseRequest struct {
	Description    string   `json:"description" validate:"required,max=4000"`
	TemplateName   string   `json:"template_name" validate:"required"`
	AuditID        string   `json:"audit_id"`
	ScopeID        string   `json:"scope_id"`
	Priority       Priority `json:"priority" validate:"required,oneof=Low Medium High"`
	AssignedTo     string   `json:"assigned_to" validate:"required"`
	AssignedToName string   `json:"assigned_to_name" validate:"required"`
	DueDate        string   `json:"due_date" validate:"omitempty,datetime=2006-01-02"` // expected format: YYYY-MM-DD
}
