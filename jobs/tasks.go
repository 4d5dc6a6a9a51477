package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTemplateApply provisions a role template for a tenant out of band.
	TaskTemplateApply = "roles:template:apply"
	// TaskAuditRetention prunes audit trail rows past the retention window.
	TaskAuditRetention = "audit:retention"
)

// TemplateApplyPayload describes a template application request.
type TemplateApplyPayload struct {
	TemplateID string    `json:"template_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	ActorID    string    `json:"actor_id"`
}

// NewTemplateApplyTask constructs an Asynq task.
func NewTemplateApplyTask(payload TemplateApplyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTemplateApply, data), nil
}

// AuditRetentionPayload configures the retention sweep.
type AuditRetentionPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditRetentionTask constructs an Asynq task.
func NewAuditRetentionTask(payload AuditRetentionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRetention, data), nil
}
