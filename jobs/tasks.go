package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeProposalNotifySent fires after a proposal reaches Enviada.
	TaskTypeProposalNotifySent = "proposal:notify_sent"
	// TaskTypeProposalExpireScan is the daily validity sweep.
	TaskTypeProposalExpireScan = "proposal:expire_scan"
)

// ProposalNotifySentPayload identifies the proposal to notify about.
type ProposalNotifySentPayload struct {
	ProposalID int64 `json:"proposal_id"`
}

// NewProposalNotifySentTask constructs an Asynq task.
func NewProposalNotifySentTask(payload ProposalNotifySentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeProposalNotifySent, data), nil
}

// NewProposalExpireScanTask constructs the cron sweep task. It carries
// no payload; the handler derives the cutoff from the clock.
func NewProposalExpireScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeProposalExpireScan, nil)
}
