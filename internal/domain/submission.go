package domain

import "time"

type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "Pending"
	SubmissionApproved SubmissionStatus = "Approve"
	SubmissionRejected SubmissionStatus = "Rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// CanTransition reports whether from -> to is an edge of the submission
// state machine. Only Pending has outgoing edges and self-loops are refused.
func CanTransition(from, to SubmissionStatus) bool {
	return from == SubmissionPending && to.Terminal()
}

type Submission struct {
	ID           string           `json:"id"`
	TaskID       string           `json:"taskId"`
	TaskTitle    string           `json:"taskTitle"`
	WorkerEmail  string           `json:"workerEmail"`
	WorkerName   string           `json:"workerName"`
	CreatorEmail string           `json:"creatorEmail"`
	Amount       int64            `json:"amount"`
	Details      string           `json:"details"`
	Status       SubmissionStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

type WorkerStats struct {
	AvailableCoin         int64 `json:"availableCoin"`
	TotalSubmissions      int64 `json:"totalSubmissions"`
	TotalApprovedEarnings int64 `json:"totalApprovedEarnings"`
}

type CreatorStats struct {
	AvailableCoin int64 `json:"availableCoin"`
	PendingCount  int64 `json:"pendingCount"`
	TotalPaidOut  int64 `json:"totalPaidOut"`
}
