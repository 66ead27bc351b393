package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JohnBravos/bookhub-manager/config"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
)

// NotifyWorker consumes notification jobs. It only reads loan state; every
// status change goes through the engine.
type NotifyWorker struct {
	id    int
	store *store.Store
}

func (w *NotifyWorker) Run(c <-chan model.Job) {
	log.Debug("NotifyWorker is running", zap.Int("worker_id", w.id))

	for job := range c {
		user, err := w.store.GetUser(context.Background(), &model.FindUser{ID: &job.UserID})
		if err != nil || user == nil {
			log.Error("Failed to resolve user for notification",
				zap.Int64("user_id", job.UserID),
				zap.Error(err))
			continue
		}

		// Delivery is a log line for now. TODO: wire an SMTP sender once
		// the mail settings land in config.
		log.Info("Loan notification",
			zap.String("kind", string(job.Kind)),
			zap.String("username", user.Username),
			zap.String("email", user.Email),
			zap.Int64("loan_id", job.LoanID),
			zap.Int64("book_id", job.BookID),
			zap.Time("due_date", time.Unix(job.DueDate, 0)))
	}
}

// StartNotifyLoop periodically scans for loans that are due soon or overdue
// and pushes one job per loan to the pool. It never mutates loans.
func StartNotifyLoop(ctx context.Context, s *store.Store, pool *Pool) {
	interval := time.Duration(config.Opts.NotifyIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scanOnce(ctx, s, pool)
			}
		}
	}()
}

func scanOnce(ctx context.Context, s *store.Store, pool *Pool) {
	now := time.Now()
	dueBefore := now.Add(time.Duration(config.Opts.DueSoonDays) * 24 * time.Hour).Unix()

	// Now stays zero on purpose: the scan covers overdue loans as well as
	// due-soon ones, and the job kind tells them apart below.
	loans, err := s.ListLoans(ctx, &model.FindLoan{DueBefore: &dueBefore})
	if err != nil {
		log.Error("Failed to scan loans for notifications", zap.Error(err))
		return
	}

	jobs := make(model.JobList, 0, len(loans))
	for _, loan := range loans {
		kind := model.NotifyDueSoon
		if loan.IsOverdue(now) {
			kind = model.NotifyOverdue
		}
		jobs = append(jobs, model.Job{
			Kind:    kind,
			UserID:  loan.UserID,
			LoanID:  loan.ID,
			BookID:  loan.BookID,
			DueDate: loan.DueDate,
		})
	}
	pool.Push(jobs)
}
