package domain

// Status is the lifecycle state of an action plan.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// transitions lists, for each status, the statuses it may move to.
// Re-writing the current status is allowed so a retried update is harmless.
// There are no backward transitions.
var transitions = map[Status][]Status{
	StatusPending:    {StatusPending, StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusInProgress, StatusCompleted},
	StatusCompleted:  {StatusCompleted},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an action plan may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedFrom returns every status from which to is reachable, in
// pending, in_progress, completed order. Storage uses it as a write condition.
func AllowedFrom(to Status) []Status {
	var out []Status
	for _, from := range []Status{StatusPending, StatusInProgress, StatusCompleted} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// Deletable reports whether a plan in status s may be hard-deleted.
func Deletable(s Status) bool { return s == StatusCompleted }
