package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pet-adoption/internal/domain/notifications"
)

type NotificationsRepo struct {
	db dbtx
}

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

const notificationColumns = `
	id, user_id, type, pet_id, adoption_id,
	message, read, action_required, created_at`

func scanNotification(row rowScanner) (notifications.Notification, error) {
	var (
		n          notifications.Notification
		adoptionID sql.NullString
	)
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.PetID,
		&adoptionID,
		&n.Message,
		&n.Read,
		&n.ActionRequired,
		&n.CreatedAt,
	); err != nil {
		return notifications.Notification{}, err
	}
	n.AdoptionID = adoptionID.String
	return n, nil
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		n.ID,
		n.UserID,
		string(n.Type),
		n.PetID,
		toNullString(n.AdoptionID),
		n.Message,
		n.Read,
		n.ActionRequired,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notifications.Notification{}, notifications.ErrNotFound
		}
		return notifications.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]notifications.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r *NotificationsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return notifications.ErrNotFound
	}
	return nil
}
