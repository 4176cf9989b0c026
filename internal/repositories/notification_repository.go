package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"agridash-backend/internal/models"
)

// NotificationRepository persists notifications. Ids come from the database
// sequence, never from a client-side max+1.
type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO notifications (title, message, read, target_user_id, kind)
		 VALUES ($1, $2, FALSE, $3, $4)
		 RETURNING id, created_at`,
		n.Title, n.Message, n.TargetUserID, n.Kind).
		Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListUnread returns unread notifications addressed to the given user or to
// everyone (empty target), newest first.
func (r *NotificationRepository) ListUnread(ctx context.Context, targetUserID string) ([]*models.Notification, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, title, message, read, created_at, target_user_id, kind, read_by_user_id, read_at
		 FROM notifications
		 WHERE read = FALSE AND target_user_id IN ($1, '')
		 ORDER BY created_at DESC`,
		targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Read, &n.CreatedAt,
			&n.TargetUserID, &n.Kind, &n.ReadByUserID, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead flips one notification to read, recording who and when. Returns
// false when the id does not exist.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, userID string, at time.Time) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE notifications
		 SET read = TRUE, read_by_user_id = $1, read_at = $2
		 WHERE id = $3`,
		userID, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllRead flips the given ids to read in one statement and returns the
// ids that actually matched, so the caller can report the ones that did not.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, ids []int64, userID string, at time.Time) ([]int64, error) {
	rows, err := r.DB.Query(ctx,
		`UPDATE notifications
		 SET read = TRUE, read_by_user_id = $1, read_at = $2
		 WHERE id = ANY($3)
		 RETURNING id`,
		userID, at, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	defer rows.Close()

	var updated []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan notification id: %w", err)
		}
		updated = append(updated, id)
	}
	return updated, rows.Err()
}
