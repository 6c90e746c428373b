package service

import (
	"context"
	"time"

	"docqa-be/internal/entity"
	"docqa-be/internal/pkg/logger"
	"docqa-be/internal/repository/unitofwork"
)

const (
	sweeperModule      = "SWEEPER"
	interruptedMessage = "processing interrupted"
	orphanSweepBatch   = 200

	DefaultOrphanSweepInterval = 5 * time.Minute
)

// IOrphanSweeper answers questions whose processing never finished, e.g. after a crash.
type IOrphanSweeper interface {
	// Sweep answers every question older than grace that has no answer, and returns how many it answered.
	Sweep(ctx context.Context, grace time.Duration) (int, error)
	// Run sweeps on every tick until ctx is done.
	Run(ctx context.Context, interval, grace time.Duration)
}

type orphanSweeper struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
	now        func() time.Time
}

func NewOrphanSweeper(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IOrphanSweeper {
	return &orphanSweeper{uowFactory: uowFactory, log: log, now: time.Now}
}

func (s *orphanSweeper) Sweep(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := s.now().Add(-grace)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	reconciled := 0
	for {
		orphans, err := uow.QuestionRepository().FindUnanswered(ctx, cutoff, orphanSweepBatch)
		if err != nil {
			return reconciled, err
		}
		if len(orphans) == 0 {
			break
		}

		written := 0
		for _, q := range orphans {
			elapsed := s.now().Sub(q.CreatedAt).Milliseconds()
			answer := &entity.Answer{
				QuestionId:       q.Id,
				AnswerText:       errorAnswerPrefix + interruptedMessage,
				ConfidenceScore:  0,
				ProcessingTimeMs: &elapsed,
				CreatedAt:        s.now(),
			}
			// a unique question_id means a late original answer wins and this insert fails
			if err := uow.AnswerRepository().Create(ctx, answer); err != nil {
				s.log.Warn(sweeperModule, "Failed to answer orphaned question", map[string]interface{}{
					"question_id": q.Id,
					"error":       err.Error(),
				})
				continue
			}
			written++
		}
		reconciled += written

		if len(orphans) < orphanSweepBatch || written == 0 {
			break
		}
	}

	if reconciled > 0 {
		s.log.Info(sweeperModule, "Reconciled orphaned questions", map[string]interface{}{"count": reconciled})
	}
	return reconciled, nil
}

func (s *orphanSweeper) Run(ctx context.Context, interval, grace time.Duration) {
	if interval <= 0 {
		interval = DefaultOrphanSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, grace); err != nil {
				s.log.Error(sweeperModule, "Orphan sweep failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}
