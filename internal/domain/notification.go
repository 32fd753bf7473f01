package domain

import "time"

type Notification struct {
	ID          string    `json:"id"`
	ToEmail     string    `json:"toEmail"`
	Message     string    `json:"message"`
	ActionRoute string    `json:"actionRoute,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
