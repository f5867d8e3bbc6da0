package proposals

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospeto-crm/prospeto-crm/internal/catalog"
	"github.com/prospeto-crm/prospeto-crm/internal/clients"
	"github.com/prospeto-crm/prospeto-crm/internal/quote"
)

type stubRepo struct {
	mu        sync.Mutex
	proposals map[int64]Proposal
	lines     map[int64][]ProposalService
	nextID    int64

	updateStatusErr error
	statusCalls     int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		proposals: make(map[int64]Proposal),
		lines:     make(map[int64][]ProposalService),
	}
}

func (r *stubRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *stubRepo) Get(ctx context.Context, id int64) (*Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Services = append([]ProposalService(nil), r.lines[id]...)
	return &p, nil
}

func (r *stubRepo) GetByShareToken(ctx context.Context, token string) (*ProposalWithDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.proposals {
		if p.ShareToken == token {
			p.Services = append([]ProposalService(nil), r.lines[id]...)
			return &ProposalWithDetails{Proposal: p, OwnerName: "Ana Souza"}, nil
		}
	}
	return nil, ErrNotFound
}

func (r *stubRepo) List(ctx context.Context, req ListProposalsRequest) ([]ProposalWithDetails, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ProposalWithDetails
	for id := int64(1); id <= r.nextID; id++ {
		if p, ok := r.proposals[id]; ok {
			out = append(out, ProposalWithDetails{Proposal: p, OwnerName: "Ana Souza"})
		}
	}
	total := len(out)
	if req.Limit > 0 && len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, total, nil
}

func (r *stubRepo) Create(ctx context.Context, p Proposal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.proposals[p.ID] = p
	return p.ID, nil
}

func (r *stubRepo) InsertLine(ctx context.Context, line ProposalService) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line.ID = int64(len(r.lines[line.ProposalID]) + 1)
	r.lines[line.ProposalID] = append(r.lines[line.ProposalID], line)
	return line.ID, nil
}

func (r *stubRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.proposals[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["title"]; ok {
		p.Title = v.(string)
	}
	if v, ok := updates["notes"]; ok {
		p.Notes = v.(string)
	}
	if v, ok := updates["status"]; ok {
		p.Status = Status(v.(string))
	}
	if v, ok := updates["client_id"]; ok {
		if v == nil {
			p.ClientID = nil
		} else {
			id := v.(int64)
			p.ClientID = &id
		}
	}
	p.UpdatedAt = time.Now()
	r.proposals[id] = p
	return nil
}

func (r *stubRepo) UpdateStatus(ctx context.Context, id int64, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusCalls++
	if r.updateStatusErr != nil {
		return r.updateStatusErr
	}
	p, ok := r.proposals[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	r.proposals[id] = p
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.proposals[id]; !ok {
		return ErrNotFound
	}
	delete(r.proposals, id)
	delete(r.lines, id)
	return nil
}

func (r *stubRepo) DeleteLines(ctx context.Context, proposalID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, proposalID)
	return nil
}

func (r *stubRepo) ListExpired(ctx context.Context, now pgtype.Timestamptz) ([]Proposal, error) {
	return nil, nil
}

type stubCatalog struct {
	services map[int64]quote.Service
}

func (c *stubCatalog) QuoteService(ctx context.Context, id int64) (quote.Service, error) {
	svc, ok := c.services[id]
	if !ok {
		return quote.Service{}, fmt.Errorf("service %d: %w", id, catalog.ErrNotFound)
	}
	return svc, nil
}

type stubClientRepo struct {
	mu      sync.Mutex
	clients map[int64]clients.Client
	nextID  int64
}

func (r *stubClientRepo) Get(ctx context.Context, id int64) (*clients.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, clients.ErrNotFound
	}
	return &c, nil
}

func (r *stubClientRepo) List(ctx context.Context, req clients.ListClientsRequest) ([]clients.Client, int, error) {
	return nil, 0, nil
}

func (r *stubClientRepo) Create(ctx context.Context, c clients.Client) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clients == nil {
		r.clients = make(map[int64]clients.Client)
	}
	r.nextID++
	c.ID = r.nextID
	r.clients[c.ID] = c
	return c.ID, nil
}

func (r *stubClientRepo) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	return nil
}

func (r *stubClientRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []int64
}

func (n *stubNotifier) ProposalSent(ctx context.Context, proposalID int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, proposalID)
	return nil
}

type fixture struct {
	repo       *stubRepo
	clientRepo *stubClientRepo
	notifier   *stubNotifier
	service    *Service
}

func newFixture() *fixture {
	repo := newStubRepo()
	clientRepo := &stubClientRepo{clients: map[int64]clients.Client{
		10: {ID: 10, Name: "Padaria Central", OwnerID: 1},
	}}
	notifier := &stubNotifier{}
	catalogStub := &stubCatalog{services: map[int64]quote.Service{
		1: {ID: 1, Name: "Site institucional", BasePrice: 3000, Features: []string{"design", "hospedagem"}, BillingType: quote.BillingOneTime},
		2: {ID: 2, Name: "Gestão de tráfego", BasePrice: 1500, BillingType: quote.BillingMonthly},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		repo:       repo,
		clientRepo: clientRepo,
		notifier:   notifier,
		service: NewService(
			repo,
			catalogStub,
			clients.NewService(clientRepo),
			nil,
			notifier,
			nil,
			logger,
		),
	}
}

func TestRegisterSnapshotsCart(t *testing.T) {
	f := newFixture()
	clientID := int64(10)

	proposal, err := f.service.Register(context.Background(), RegisterProposalRequest{
		Title:    "Proposta site + tráfego",
		ClientID: &clientID,
		Services: []SelectedServiceReq{
			{ServiceID: 1, Quantity: 1, DiscountValue: 10, DiscountType: quote.DiscountPercentage},
			{ServiceID: 2, Quantity: 2},
		},
		Payment: PaymentConfigReq{Type: quote.PaymentCash, CashDiscountPercentage: 5},
	}, 1)
	require.NoError(t, err)

	// subtotal = 3000*0.9 + 1500*2 = 5700; cash total = 5700*0.95
	assert.InDelta(t, 5415.0, proposal.Amount, 0.001)
	assert.Equal(t, StatusCreated, proposal.Status)
	assert.NotEmpty(t, proposal.ShareToken)
	require.NotNil(t, proposal.ClientID)
	assert.Equal(t, clientID, *proposal.ClientID)

	require.Len(t, proposal.Services, 2)
	assert.Equal(t, 1, proposal.Services[0].LineOrder)
	assert.Equal(t, 2, proposal.Services[1].LineOrder)
	assert.Equal(t, []string{"design", "hospedagem"}, proposal.Services[0].Features)
	assert.InDelta(t, 300.0, proposal.Services[0].Discount, 0.001)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture()
	clientID := int64(10)
	missingClientID := int64(99)

	tests := []struct {
		name string
		req  RegisterProposalRequest
	}{
		{
			"no services",
			RegisterProposalRequest{Title: "x", Payment: PaymentConfigReq{Type: quote.PaymentCash}},
		},
		{
			"unknown service id",
			RegisterProposalRequest{
				Title:    "x",
				ClientID: &clientID,
				Services: []SelectedServiceReq{{ServiceID: 999, Quantity: 1}},
				Payment:  PaymentConfigReq{Type: quote.PaymentCash},
			},
		},
		{
			"unknown client id",
			RegisterProposalRequest{
				Title:    "x",
				ClientID: &missingClientID,
				Services: []SelectedServiceReq{{ServiceID: 1, Quantity: 1}},
				Payment:  PaymentConfigReq{Type: quote.PaymentCash},
			},
		},
		{
			"installment without values",
			RegisterProposalRequest{
				Title:    "x",
				Services: []SelectedServiceReq{{ServiceID: 1, Quantity: 1}},
				Payment:  PaymentConfigReq{Type: quote.PaymentInstallment, InstallmentNumber: 3},
			},
		},
		{
			"client id and inline client together",
			RegisterProposalRequest{
				Title:     "x",
				ClientID:  &clientID,
				NewClient: &NewClientReq{Name: "Novo"},
				Services:  []SelectedServiceReq{{ServiceID: 1, Quantity: 1}},
				Payment:   PaymentConfigReq{Type: quote.PaymentCash},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(context.Background(), tt.req, 1)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRegisterCreatesInlineClient(t *testing.T) {
	f := newFixture()

	proposal, err := f.service.Register(context.Background(), RegisterProposalRequest{
		Title:     "Proposta com cliente novo",
		NewClient: &NewClientReq{Name: "Novo Cliente", Email: "novo@exemplo.com"},
		Services:  []SelectedServiceReq{{ServiceID: 1, Quantity: 1}},
		Payment:   PaymentConfigReq{Type: quote.PaymentCash},
	}, 1)
	require.NoError(t, err)
	require.NotNil(t, proposal.ClientID)

	created, err := f.clientRepo.Get(context.Background(), *proposal.ClientID)
	require.NoError(t, err)
	assert.Equal(t, "Novo Cliente", created.Name)
}

func TestMoveStatusPersistsAndNotifies(t *testing.T) {
	f := newFixture()
	id, err := f.repo.Create(context.Background(), Proposal{Title: "p", OwnerID: 1, Status: StatusCreated, ShareToken: "t1"})
	require.NoError(t, err)
	require.NoError(t, f.service.ReloadBoard(context.Background()))

	require.NoError(t, f.service.MoveStatus(context.Background(), id, StatusSent, 1))

	stored, err := f.repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, stored.Status)

	got, ok := f.service.board.StatusOf(id)
	require.True(t, ok)
	assert.Equal(t, StatusSent, got)

	assert.Equal(t, []int64{id}, f.notifier.sent)
}

func TestMoveStatusSameColumnIsNoop(t *testing.T) {
	f := newFixture()
	id, err := f.repo.Create(context.Background(), Proposal{Title: "p", OwnerID: 1, Status: StatusSent, ShareToken: "t1"})
	require.NoError(t, err)
	require.NoError(t, f.service.ReloadBoard(context.Background()))

	require.NoError(t, f.service.MoveStatus(context.Background(), id, StatusSent, 1))

	assert.Zero(t, f.repo.statusCalls)
	assert.Empty(t, f.notifier.sent)
}

func TestMoveStatusRollsBackOnPersistenceFailure(t *testing.T) {
	f := newFixture()
	id, err := f.repo.Create(context.Background(), Proposal{Title: "p", OwnerID: 1, Status: StatusCreated, ShareToken: "t1"})
	require.NoError(t, err)
	require.NoError(t, f.service.ReloadBoard(context.Background()))

	f.repo.updateStatusErr = errors.New("connection reset")

	err = f.service.MoveStatus(context.Background(), id, StatusApproved, 1)
	require.Error(t, err)

	// the reload re-derives the card from the source of truth
	got, ok := f.service.board.StatusOf(id)
	require.True(t, ok)
	assert.Equal(t, StatusCreated, got)
	assert.Empty(t, f.notifier.sent)
}

func TestMoveStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	err := f.service.MoveStatus(context.Background(), 1, Status("Qualquer"), 1)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDuplicateCopiesLines(t *testing.T) {
	f := newFixture()
	clientID := int64(10)

	source, err := f.service.Register(context.Background(), RegisterProposalRequest{
		Title:    "Original",
		ClientID: &clientID,
		Services: []SelectedServiceReq{{ServiceID: 1, Quantity: 1}, {ServiceID: 2, Quantity: 3}},
		Payment:  PaymentConfigReq{Type: quote.PaymentCash},
	}, 1)
	require.NoError(t, err)

	duplicate, err := f.service.Duplicate(context.Background(), source.ID, DuplicateProposalRequest{}, 2)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, duplicate.ID)
	assert.NotEqual(t, source.ShareToken, duplicate.ShareToken)
	assert.Equal(t, "Original (cópia)", duplicate.Title)
	assert.Equal(t, StatusDraft, duplicate.Status)
	assert.Equal(t, int64(2), duplicate.OwnerID)
	assert.Equal(t, source.Amount, duplicate.Amount)

	require.Len(t, duplicate.Services, len(source.Services))
	for i := range duplicate.Services {
		assert.Equal(t, duplicate.ID, duplicate.Services[i].ProposalID)
		assert.Equal(t, source.Services[i].Name, duplicate.Services[i].Name)
		assert.Equal(t, source.Services[i].Quantity, duplicate.Services[i].Quantity)
	}

	// the original is untouched
	original, err := f.repo.Get(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", original.Title)
	assert.Equal(t, StatusCreated, original.Status)
}

func TestUpdateAndDuplicateRejectUnknownClient(t *testing.T) {
	f := newFixture()
	clientID := int64(10)

	source, err := f.service.Register(context.Background(), RegisterProposalRequest{
		Title:    "Original",
		ClientID: &clientID,
		Services: []SelectedServiceReq{{ServiceID: 1, Quantity: 1}},
		Payment:  PaymentConfigReq{Type: quote.PaymentCash},
	}, 1)
	require.NoError(t, err)

	missing := int64(404)

	_, err = f.service.Update(context.Background(), source.ID, UpdateProposalRequest{ClientID: &missing})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.service.Duplicate(context.Background(), source.ID, DuplicateProposalRequest{ClientID: &missing}, 1)
	assert.ErrorIs(t, err, ErrValidation)

	proposal, err := f.repo.Get(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, clientID, *proposal.ClientID)
}

func TestShareViewIgnoresCashDiscount(t *testing.T) {
	f := newFixture()
	clientID := int64(10)

	registered, err := f.service.Register(context.Background(), RegisterProposalRequest{
		Title:    "Compartilhada",
		ClientID: &clientID,
		Services: []SelectedServiceReq{{ServiceID: 1, Quantity: 1}},
		Payment:  PaymentConfigReq{Type: quote.PaymentCash, CashDiscountPercentage: 10},
	}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2700.0, registered.Amount, 0.001)

	view, err := f.service.ShareView(context.Background(), registered.ShareToken)
	require.NoError(t, err)

	// public totals carry no cash discount
	assert.InDelta(t, 3000.0, view.Summary.FinalTotal, 0.001)
	assert.Zero(t, view.Summary.CashDiscount)
	assert.Equal(t, "/static/logo-default.svg", view.LogoURL)
	assert.Equal(t, "ocean", view.GradientTheme)
}

func TestShareViewUnknownToken(t *testing.T) {
	f := newFixture()
	_, err := f.service.ShareView(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoardViewBucketsEveryStatus(t *testing.T) {
	f := newFixture()
	_, err := f.repo.Create(context.Background(), Proposal{Title: "a", OwnerID: 1, Status: StatusCreated, ShareToken: "t1"})
	require.NoError(t, err)
	_, err = f.repo.Create(context.Background(), Proposal{Title: "b", OwnerID: 1, Status: StatusApproved, ShareToken: "t2"})
	require.NoError(t, err)

	buckets, err := f.service.BoardView(context.Background(), ListProposalsRequest{})
	require.NoError(t, err)

	for _, s := range Statuses {
		_, ok := buckets[s]
		assert.True(t, ok, "bucket %q must exist", s)
	}
	assert.Len(t, buckets[StatusCreated], 1)
	assert.Len(t, buckets[StatusApproved], 1)
}
