package worker

import (
	"context"
	"log/slog"
	"time"

	"flynext/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Publisher is what the worker hands drained jobs to, normally the Kafka
// producer in infra/notifier.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Worker drains due notification jobs and publishes them to the broker.
// Jobs are written transactionally with booking state changes, so anything
// it finds here corresponds to a committed confirmation or cancellation.
type Worker struct {
	pool      *pgxpool.Pool
	publisher Publisher
	interval  time.Duration
	batchSize int
}

func New(pool *pgxpool.Pool, publisher Publisher, interval time.Duration) *Worker {
	return &Worker{
		pool:      pool,
		publisher: publisher,
		interval:  interval,
		batchSize: 50,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				slog.Error("notification drain failed", "error", err.Error())
			}
		}
	}
}

// drainOnce claims a batch with FOR UPDATE SKIP LOCKED so multiple worker
// instances never double-publish the same job.
func (w *Worker) drainOnce(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(err, "begin drain transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, topic, payload
		FROM notification_jobs
		WHERE status = 'PENDING' AND run_at <= now()
		ORDER BY run_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, w.batchSize)
	if err != nil {
		return errs.Wrap(err, "query pending jobs")
	}

	type job struct {
		id      uuid.UUID
		topic   string
		payload []byte
	}
	var jobs []job
	for rows.Next() {
		var j job
		if err := rows.Scan(&j.id, &j.topic, &j.payload); err != nil {
			rows.Close()
			return errs.Wrap(err, "scan job")
		}
		jobs = append(jobs, j)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return errs.Wrap(err, "iterate jobs")
	}
	if len(jobs) == 0 {
		return nil
	}

	var sent []uuid.UUID
	for _, j := range jobs {
		if err := w.publisher.Publish(ctx, j.topic, j.payload); err != nil {
			// leave the job PENDING, a later tick retries it
			slog.Warn("publish failed", "job_id", j.id, "topic", j.topic, "error", err.Error())
			continue
		}
		sent = append(sent, j.id)
	}
	if len(sent) == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE notification_jobs
		SET status = 'SENT', sent_at = now()
		WHERE id = ANY($1)`, sent); err != nil {
		return errs.Wrap(err, "mark jobs sent")
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Wrap(err, "commit drain transaction")
	}

	slog.Info("notifications published", "count", len(sent))
	return nil
}
