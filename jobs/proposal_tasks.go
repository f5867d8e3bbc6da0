package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/prospeto-crm/prospeto-crm/internal/proposals"
	"github.com/prospeto-crm/prospeto-crm/internal/shared"
)

// NewProposalNotifySentHandler builds the handler for the notify-sent
// task: it resolves the proposal and records the outbound notification.
// Mail transport is the follow-up phase; the record is already useful
// for the activity feed.
func NewProposalNotifySentHandler(repo proposals.Repository, audit *shared.AuditLogger, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ProposalNotifySentPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		p, err := repo.Get(ctx, payload.ProposalID)
		if err != nil {
			logger.Warn("notify sent: proposal lookup failed",
				slog.Int64("proposal_id", payload.ProposalID), slog.Any("error", err))
			return asynq.SkipRetry
		}

		logger.Info("proposal sent notification",
			slog.Int64("proposal_id", p.ID),
			slog.String("title", p.Title),
			slog.String("share_token", p.ShareToken))

		if audit != nil {
			if err := audit.Record(ctx, shared.AuditLog{
				ActorID:  p.OwnerID,
				Action:   "proposal.notified",
				Entity:   "proposal",
				EntityID: strconv.FormatInt(p.ID, 10),
			}); err != nil {
				logger.Warn("notify sent: audit record failed", slog.Any("error", err))
			}
		}
		return nil
	}
}

// NewProposalExpireScanHandler builds the daily validity sweep: every
// validity-enabled proposal past its window that still sits in an
// active column gets an expiry audit entry. The status itself is not
// touched; expiry is advisory, owners move cards themselves.
func NewProposalExpireScanHandler(repo proposals.Repository, audit *shared.AuditLogger, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		now := pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
		expired, err := repo.ListExpired(ctx, now)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		logger.Info("validity sweep", slog.Int("expired", len(expired)))
		for _, p := range expired {
			if audit == nil {
				continue
			}
			if err := audit.Record(ctx, shared.AuditLog{
				ActorID:  p.OwnerID,
				Action:   "proposal.expired",
				Entity:   "proposal",
				EntityID: strconv.FormatInt(p.ID, 10),
				Meta:     map[string]any{"validity_days": p.ValidityDays},
			}); err != nil {
				logger.Warn("validity sweep: audit record failed",
					slog.Int64("proposal_id", p.ID), slog.Any("error", err))
			}
		}
		return nil
	}
}
