package domain

import "time"

type Task struct {
	ID                  string     `json:"id"`
	CreatorEmail        string     `json:"creatorEmail"`
	Title               string     `json:"title"`
	Details             string     `json:"details"`
	SubmissionInfo      string     `json:"submissionInfo"`
	RewardPerSubmission int64      `json:"rewardPerSubmission"`
	RequiredWorkers     int64      `json:"requiredWorkers"`
	ImageURL            string     `json:"imageUrl,omitempty"`
	CompletionDate      *time.Time `json:"completionDate,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// TotalFunding is the coin amount the creator escrows for the task.
func (t *Task) TotalFunding() int64 {
	return t.RewardPerSubmission * t.RequiredWorkers
}

// TaskUpdate carries the mutable task fields. Nil means unchanged.
type TaskUpdate struct {
	Title          *string
	Details        *string
	SubmissionInfo *string
}

func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Details == nil && u.SubmissionInfo == nil
}

// Apply copies the set fields onto t.
func (u TaskUpdate) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Details != nil {
		t.Details = *u.Details
	}
	if u.SubmissionInfo != nil {
		t.SubmissionInfo = *u.SubmissionInfo
	}
}
