package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"promo-redemption/internal/domain/model"
	"promo-redemption/internal/domain/ports/repository"
	ucport "promo-redemption/internal/domain/ports/usecase"
	"promo-redemption/internal/infra/metrics"
	"promo-redemption/internal/infra/worker"
)

// TaskSubmitter accepts background work. *worker.Pool satisfies it.
type TaskSubmitter interface {
	Submit(task worker.Task) error
}

var _ ucport.AuditRecorder = (*auditUC)(nil)

type auditUC struct {
	repo    repository.AuditLogRepository
	workers TaskSubmitter
	log     *zerolog.Logger
}

// NewAuditUseCase returns a recorder that writes audit entries off the
// request path. Failures are logged and counted, never returned.
func NewAuditUseCase(repo repository.AuditLogRepository, workers TaskSubmitter, logger *zerolog.Logger) ucport.AuditRecorder {
	return &auditUC{repo: repo, workers: workers, log: logger}
}

func (a *auditUC) Record(ctx context.Context, entry model.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	// the request context is cancelled once the handler returns
	bg := context.WithoutCancel(ctx)

	task := func(context.Context) error {
		a.save(bg, &entry)
		return nil
	}
	if err := a.workers.Submit(task); err != nil {
		metrics.IncAuditRecord("dropped")
		a.log.Warn().Err(err).Str("action_type", entry.ActionType).Str("target_id", entry.TargetID).Msg("audit record dropped")
	}
}

func (a *auditUC) save(ctx context.Context, entry *model.AuditEntry) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := a.repo.Save(ctx, repository.NoTX, entry); err != nil {
		metrics.IncAuditRecord("failed")
		a.log.Error().Err(err).Str("action_type", entry.ActionType).Str("target_id", entry.TargetID).Msg("audit record failed")
		return
	}
	metrics.IncAuditRecord("saved")
}
