package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/lexvault/lexvault/internal/roles"
)

// TemplateApplier provisions role templates; implemented by the roles
// service.
type TemplateApplier interface {
	ApplyTemplate(ctx context.Context, templateID string, tenantID uuid.UUID, actorID string) ([]string, error)
}

// AuditPruner deletes audit rows past a cutoff; implemented by the audit
// repository.
type AuditPruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Handlers holds the services the task handlers dispatch into.
type Handlers struct {
	Roles  TemplateApplier
	Audit  AuditPruner
	Logger *slog.Logger
}

// HandleTemplateApply runs a queued template application. The operation is
// idempotent, so retries after partial failures are safe.
func (h Handlers) HandleTemplateApply(ctx context.Context, t *asynq.Task) error {
	var payload TemplateApplyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	created, err := h.Roles.ApplyTemplate(ctx, payload.TemplateID, payload.TenantID, payload.ActorID)
	if err != nil {
		h.Logger.Error("template apply task",
			slog.String("template", payload.TemplateID),
			slog.String("tenant_id", payload.TenantID.String()),
			slog.Any("error", err))
		return err
	}
	h.Logger.Info("template applied",
		slog.String("template", payload.TemplateID),
		slog.String("tenant_id", payload.TenantID.String()),
		slog.Int("created", len(created)))
	return nil
}

// HandleAuditRetention prunes audit rows older than the retention window.
func (h Handlers) HandleAuditRetention(ctx context.Context, t *asynq.Task) error {
	var payload AuditRetentionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	days := payload.RetentionDays
	if days <= 0 {
		days = 365
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	pruned, err := h.Audit.PruneOlderThan(ctx, cutoff)
	if err != nil {
		h.Logger.Error("audit retention task", slog.Any("error", err))
		return err
	}
	h.Logger.Info("audit trail pruned",
		slog.Time("cutoff", cutoff),
		slog.Int64("rows", pruned))
	return nil
}

var _ TemplateApplier = (*roles.Service)(nil)
