package models

import "time"

// NotificationKindStock tags notifications generated by stock mutations.
const NotificationKindStock = "stock"

// Notification is a per-user or broadcast message describing a stock
// mutation. TargetUserID of "" means broadcast to all users. A notification
// is written once and mutated exactly once (read=false -> true).
type Notification struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Read         bool       `json:"read"`
	CreatedAt    time.Time  `json:"created_at"`
	TargetUserID string     `json:"target_user_id"` // "" = broadcast
	Kind         string     `json:"kind"`
	ReadByUserID string     `json:"read_by_user_id,omitempty"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
}

// MarkAllReadRequest represents the request body for batch mark-as-read
type MarkAllReadRequest struct {
	IDs []int64 `json:"ids"`
}
