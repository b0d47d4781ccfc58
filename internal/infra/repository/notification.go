package repository

import (
	"context"
	"time"

	"flynext/internal/infra"
	"flynext/internal/infra/db"
	"flynext/internal/usecase/shared"

	"github.com/google/uuid"
)

// NotificationRepository stores outgoing notification jobs in the same
// transaction as the state change they announce. A separate worker drains
// the table and publishes to the broker.
type NotificationRepository struct {
	exec db.Executor
}

func NewNotificationRepository(exec db.Executor) shared.NotificationRepository {
	return &NotificationRepository{exec: exec}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := r.exec.Exec(ctx, `
		INSERT INTO notification_jobs (id, kind, topic, payload, status, run_at, created_at)
		VALUES ($1, $2, $3, $4, 'PENDING', $5, now())`,
		uuid.New(), kind, topic, payload, runAt,
	)
	if err != nil {
		return infra.WrapRepoErr("insert notification job", err)
	}
	return nil
}
