package proposals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/prospeto-crm/prospeto-crm/internal/clients"
	"github.com/prospeto-crm/prospeto-crm/internal/quote"
	"github.com/prospeto-crm/prospeto-crm/internal/shared"
)

var (
	ErrInvalidStatus = errors.New("invalid status")
	ErrValidation    = errors.New("validation failed")
)

// CatalogReader resolves catalog rows into engine-facing services. A
// lookup miss wraps shared.ErrNotFound.
type CatalogReader interface {
	QuoteService(ctx context.Context, id int64) (quote.Service, error)
}

// Notifier enqueues out-of-band notifications. Failures are logged, not
// surfaced; notification is best effort.
type Notifier interface {
	ProposalSent(ctx context.Context, proposalID int64) error
}

const shareCacheTTL = 2 * time.Minute

type Service struct {
	repo     Repository
	catalog  CatalogReader
	clients  *clients.Service
	audit    *shared.AuditLogger
	notifier Notifier
	cache    *redis.Client
	logger   *slog.Logger

	board *Board
}

func NewService(
	repo Repository,
	catalog CatalogReader,
	clientService *clients.Service,
	audit *shared.AuditLogger,
	notifier Notifier,
	cache *redis.Client,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		clients:  clientService,
		audit:    audit,
		notifier: notifier,
		cache:    cache,
		logger:   logger,
		board:    NewBoard(nil),
	}
}

// Register snapshots the wizard cart into a persisted proposal. The cart
// is rebuilt through the engine so every discount rule applies exactly
// as in the preview, then frozen: the proposal never re-prices.
func (s *Service) Register(ctx context.Context, req RegisterProposalRequest, ownerID int64) (*Proposal, error) {
	if len(req.Services) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", ErrValidation)
	}
	if req.Payment.Type == quote.PaymentInstallment &&
		req.Payment.InstallmentValue <= 0 && req.Payment.ManualInstallmentTotal <= 0 {
		return nil, fmt.Errorf("%w: installment payment requires an installment value or manual total", ErrValidation)
	}
	if req.ClientID != nil && req.NewClient != nil {
		return nil, fmt.Errorf("%w: choose an existing client or a new one, not both", ErrValidation)
	}

	clientID := req.ClientID
	if clientID != nil {
		if err := s.verifyClient(ctx, *clientID); err != nil {
			return nil, err
		}
	}
	if req.NewClient != nil {
		created, err := s.clients.Create(ctx, clients.CreateClientRequest{
			Name:    req.NewClient.Name,
			Email:   req.NewClient.Email,
			Company: req.NewClient.Company,
			Phone:   req.NewClient.Phone,
		}, ownerID)
		if err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
		clientID = &created.ID
	}

	cart := quote.NewCart()
	for _, line := range req.Services {
		svc, err := s.catalog.QuoteService(ctx, line.ServiceID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, fmt.Errorf("%w: service %d does not exist", ErrValidation, line.ServiceID)
			}
			return nil, fmt.Errorf("load service: %w", err)
		}
		cart.AddService(svc, line.Quantity, line.CustomPrice)
		if line.DiscountValue > 0 {
			discountType := line.DiscountType
			if discountType == "" {
				discountType = quote.DiscountPercentage
			}
			cart.UpdateDiscount(svc.ID, line.DiscountValue, discountType)
		}
		if line.CustomFeatures != nil {
			cart.UpdateFeatures(svc.ID, line.CustomFeatures)
		}
	}

	pay := quote.PaymentConfig{
		Type:                   req.Payment.Type,
		CashDiscountPercentage: req.Payment.CashDiscountPercentage,
		InstallmentNumber:      req.Payment.InstallmentNumber,
		InstallmentValue:       req.Payment.InstallmentValue,
		ManualInstallmentTotal: req.Payment.ManualInstallmentTotal,
	}
	summary := quote.Calculate(cart.Lines(), pay)

	proposal := Proposal{
		Title:                  req.Title,
		Amount:                 summary.FinalTotal,
		ClientID:               clientID,
		OwnerID:                ownerID,
		Status:                 StatusCreated,
		Notes:                  req.Notes,
		PaymentType:            req.Payment.Type,
		CashDiscountPercentage: req.Payment.CashDiscountPercentage,
		IsValidityEnabled:      req.IsValidityEnabled,
		ValidityDays:           req.ValidityDays,
		LogoURL:                req.LogoURL,
		GradientTheme:          req.GradientTheme,
		ShareToken:             uuid.NewString(),
	}
	if req.Payment.InstallmentNumber > 0 {
		n := req.Payment.InstallmentNumber
		proposal.InstallmentNumber = &n
	}
	if req.Payment.InstallmentValue > 0 {
		v := req.Payment.InstallmentValue
		proposal.InstallmentValue = &v
	}
	if req.Payment.ManualInstallmentTotal > 0 {
		v := req.Payment.ManualInstallmentTotal
		proposal.ManualInstallmentTotal = &v
	}

	var proposalID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, proposal)
		if err != nil {
			return fmt.Errorf("create proposal: %w", err)
		}
		proposalID = id
		for i, line := range cart.Lines() {
			if _, err := repo.InsertLine(ctx, snapshotLine(id, line, i+1)); err != nil {
				return fmt.Errorf("insert proposal line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, ownerID, "proposal.register", proposalID, map[string]any{"amount": summary.FinalTotal})
	return s.repo.Get(ctx, proposalID)
}

// snapshotLine freezes a cart line into the persisted row shape.
func snapshotLine(proposalID int64, line quote.SelectedService, order int) ProposalService {
	features := line.CustomFeatures
	if features == nil {
		features = line.Features
	}
	if features == nil {
		features = []string{}
	}
	return ProposalService{
		ProposalID:         proposalID,
		ServiceID:          line.ID,
		Name:               line.Name,
		Description:        line.Description,
		BasePrice:          line.BasePrice,
		Quantity:           line.Quantity,
		CustomPrice:        line.CustomPrice,
		Discount:           line.Discount,
		DiscountPercentage: line.DiscountPercentage,
		DiscountType:       line.DiscountType,
		Features:           features,
		Category:           line.Category,
		Icon:               line.Icon,
		IsCustom:           line.IsCustom,
		BillingType:        line.BillingType,
		LineOrder:          order,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Proposal, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListProposalsRequest) ([]ProposalWithDetails, int, error) {
	return s.repo.List(ctx, req)
}

// Update edits header fields; amount and line items stay frozen.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProposalRequest) (*Proposal, error) {
	if req.Status != nil && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
	}
	if req.ClientID != nil && *req.ClientID > 0 {
		if err := s.verifyClient(ctx, *req.ClientID); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.ClientID != nil {
		if *req.ClientID > 0 {
			updates["client_id"] = *req.ClientID
		} else {
			updates["client_id"] = nil
		}
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Status != nil {
		updates["status"] = string(*req.Status)
	}
	if req.LogoURL != nil {
		updates["proposal_logo_url"] = *req.LogoURL
	}
	if req.GradientTheme != nil {
		updates["proposal_gradient_theme"] = *req.GradientTheme
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update proposal: %w", err)
		}
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		return repo.Delete(ctx, id)
	}); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "proposal.delete", id, nil)
	return nil
}

// Duplicate copies a proposal's frozen line items under a new id and
// share token, optionally retitling or reassigning the client. The
// source proposal is untouched; this is a creation, not a transition.
func (s *Service) Duplicate(ctx context.Context, sourceID int64, req DuplicateProposalRequest, actorID int64) (*Proposal, error) {
	source, err := s.repo.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get proposal: %w", err)
	}

	copyProposal := *source
	copyProposal.ID = 0
	copyProposal.Status = StatusDraft
	copyProposal.ShareToken = uuid.NewString()
	copyProposal.OwnerID = actorID
	if req.Title != nil {
		copyProposal.Title = *req.Title
	} else {
		copyProposal.Title = source.Title + " (cópia)"
	}
	if req.ClientID != nil {
		if err := s.verifyClient(ctx, *req.ClientID); err != nil {
			return nil, err
		}
		copyProposal.ClientID = req.ClientID
	}

	var newID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, copyProposal)
		if err != nil {
			return fmt.Errorf("create proposal copy: %w", err)
		}
		newID = id
		for _, line := range source.Services {
			line.ID = 0
			line.ProposalID = id
			if _, err := repo.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("copy proposal line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actorID, "proposal.duplicate", newID, map[string]any{"source_id": sourceID})
	return s.repo.Get(ctx, newID)
}

// Board returns the kanban projection for the given filters: full
// recompute of filter, sort and partition over the freshest snapshot.
func (s *Service) BoardView(ctx context.Context, req ListProposalsRequest) (map[Status][]ProposalWithDetails, error) {
	if err := s.ReloadBoard(ctx); err != nil {
		return nil, err
	}
	items := FilterProposals(s.board.Items(), req)
	SortProposals(items, req.SortBy, req.SortDesc)
	return PartitionByStatus(items), nil
}

// MoveStatus runs the drag-and-drop protocol: no-op on same column,
// optimistic board patch, persistence call, then an unconditional
// reload so the board always re-derives from the source of truth.
func (s *Service) MoveStatus(ctx context.Context, id int64, newStatus Status, actorID int64) error {
	if !newStatus.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	if current, ok := s.board.StatusOf(id); ok && current == newStatus {
		return nil
	}
	s.board.Move(id, newStatus)

	persistErr := s.repo.UpdateStatus(ctx, id, newStatus)

	if err := s.ReloadBoard(ctx); err != nil {
		s.logger.Warn("board reload failed", slog.Int64("proposal_id", id), slog.Any("error", err))
	}

	if persistErr != nil {
		return fmt.Errorf("update proposal status: %w", persistErr)
	}

	s.recordAudit(ctx, actorID, "proposal.status", id, map[string]any{"status": string(newStatus)})

	if newStatus == StatusSent && s.notifier != nil {
		if err := s.notifier.ProposalSent(ctx, id); err != nil {
			s.logger.Warn("proposal sent notification failed", slog.Int64("proposal_id", id), slog.Any("error", err))
		}
	}
	return nil
}

// ReloadBoard replaces the board snapshot wholesale from persistence.
// The snapshot and its total are fetched concurrently; the total keeps
// column counters honest when the listing is capped.
func (s *Service) ReloadBoard(ctx context.Context) error {
	var (
		items []ProposalWithDetails
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, _, err = s.repo.List(gctx, ListProposalsRequest{})
		return err
	})
	g.Go(func() error {
		var err error
		_, total, err = s.repo.List(gctx, ListProposalsRequest{Limit: 1})
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reload board: %w", err)
	}
	if total > len(items) {
		s.logger.Warn("board snapshot truncated", slog.Int("loaded", len(items)), slog.Int("total", total))
	}
	s.board.Replace(items)
	return nil
}

// ShareView resolves the public, read-only projection for a share
// token. Totals are re-derived from the stored line items with no cash
// discount applied; theme and logo fall back to defaults.
func (s *Service) ShareView(ctx context.Context, token string) (*ShareView, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, shareCacheKey(token)).Bytes(); err == nil {
			var cached ShareView
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	p, err := s.repo.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}

	pay := quote.PaymentConfig{Type: p.PaymentType}
	if p.PaymentType == quote.PaymentInstallment {
		if p.InstallmentNumber != nil {
			pay.InstallmentNumber = *p.InstallmentNumber
		}
		if p.InstallmentValue != nil {
			pay.InstallmentValue = *p.InstallmentValue
		}
		if p.ManualInstallmentTotal != nil {
			pay.ManualInstallmentTotal = *p.ManualInstallmentTotal
		}
	}
	summary := quote.Calculate(quoteLines(p.Services), pay)

	view := &ShareView{
		Title:         p.Title,
		Notes:         p.Notes,
		ClientName:    p.ClientName,
		Services:      p.Services,
		Summary:       summary,
		LogoURL:       p.LogoURL,
		GradientTheme: p.GradientTheme,
		CreatedAt:     p.CreatedAt,
	}
	if view.LogoURL == "" {
		view.LogoURL = "/static/logo-default.svg"
	}
	if view.GradientTheme == "" {
		view.GradientTheme = "ocean"
	}

	if s.cache != nil {
		if data, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, shareCacheKey(token), data, shareCacheTTL).Err(); err != nil {
				s.logger.Warn("share view cache set failed", slog.Any("error", err))
			}
		}
	}
	return view, nil
}

// DocumentData assembles the print projection of a proposal: the full
// row with the client name joined in, plus totals re-derived under the
// stored payment configuration so the document matches the frozen
// amount.
func (s *Service) DocumentData(ctx context.Context, id int64) (*ProposalWithDetails, quote.Summary, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, quote.Summary{}, err
	}

	detail := &ProposalWithDetails{Proposal: *p}
	if p.ClientID != nil {
		if c, err := s.clients.Get(ctx, *p.ClientID); err == nil {
			detail.ClientName = &c.Name
		}
	}

	pay := quote.PaymentConfig{
		Type:                   p.PaymentType,
		CashDiscountPercentage: p.CashDiscountPercentage,
	}
	if p.InstallmentNumber != nil {
		pay.InstallmentNumber = *p.InstallmentNumber
	}
	if p.InstallmentValue != nil {
		pay.InstallmentValue = *p.InstallmentValue
	}
	if p.ManualInstallmentTotal != nil {
		pay.ManualInstallmentTotal = *p.ManualInstallmentTotal
	}
	summary := quote.Calculate(quoteLines(p.Services), pay)
	return detail, summary, nil
}

// verifyClient confirms a referenced client exists, turning a lookup
// miss into a caller-facing validation error.
func (s *Service) verifyClient(ctx context.Context, id int64) error {
	if _, err := s.clients.Get(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("%w: client %d does not exist", ErrValidation, id)
		}
		return fmt.Errorf("verify client: %w", err)
	}
	return nil
}

func shareCacheKey(token string) string {
	return "share:" + token
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, proposalID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "proposal",
		EntityID: strconv.FormatInt(proposalID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
