package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pet-adoption/internal/domain/notifications"
)

type notificationRepo struct {
	s *Store
}

// Create fuera de transacción; el motor usa el sink del Tx.
func (r *notificationRepo) Create(ctx context.Context, n notifications.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return insertNotification(r.s, n)
}

func insertNotification(s *Store, n notifications.Notification) error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("notification id required")
	}
	if _, exists := s.notifications[n.ID]; exists {
		return errors.New("notification already exists")
	}
	s.notifications[n.ID] = notificationRow{Notification: n, seq: s.nextSeq()}
	return nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.notifications[id]
	if !ok {
		return notifications.Notification{}, notifications.ErrNotFound
	}
	return row.Notification, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]notifications.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := make([]notificationRow, 0)
	for _, row := range r.s.notifications {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]notifications.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Notification)
	}
	return out, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, row := range r.s.notifications {
		if row.UserID == userID && !row.Read {
			n++
		}
	}
	return n, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.notifications[id]
	if !ok {
		return notifications.ErrNotFound
	}
	row.Read = true
	r.s.notifications[id] = row
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, row := range r.s.notifications {
		if row.UserID == userID && !row.Read {
			row.Read = true
			r.s.notifications[id] = row
			n++
		}
	}
	return n, nil
}

func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.notifications[id]; !ok {
		return notifications.ErrNotFound
	}
	delete(r.s.notifications, id)
	return nil
}
