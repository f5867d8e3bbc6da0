package proposals

import (
	"sort"
	"strings"
	"sync"
)

// FilterProposals applies search, owner, client and creation-window
// filters over the source collection. Always a full pass; CRM data
// scales make that acceptable.
func FilterProposals(items []ProposalWithDetails, req ListProposalsRequest) []ProposalWithDetails {
	term := strings.ToLower(strings.TrimSpace(req.Search))
	out := make([]ProposalWithDetails, 0, len(items))
	for _, p := range items {
		if term != "" && !matchesSearch(p, term) {
			continue
		}
		if req.OwnerID != nil && p.OwnerID != *req.OwnerID {
			continue
		}
		if req.ClientID != nil && (p.ClientID == nil || *p.ClientID != *req.ClientID) {
			continue
		}
		if req.CreatedFrom != nil && p.CreatedAt.Before(*req.CreatedFrom) {
			continue
		}
		if req.CreatedTo != nil && p.CreatedAt.After(*req.CreatedTo) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p ProposalWithDetails, term string) bool {
	if strings.Contains(strings.ToLower(p.Title), term) {
		return true
	}
	if p.ClientName != nil && strings.Contains(strings.ToLower(*p.ClientName), term) {
		return true
	}
	return strings.Contains(strings.ToLower(p.OwnerName), term)
}

// SortProposals orders the collection by the requested field. The input
// slice is sorted in place and returned for chaining.
func SortProposals(items []ProposalWithDetails, by SortField, desc bool) []ProposalWithDetails {
	less := func(i, j int) bool {
		switch by {
		case SortByAmount:
			return items[i].Amount < items[j].Amount
		case SortByUpdatedAt:
			return items[i].UpdatedAt.Before(items[j].UpdatedAt)
		default:
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
	}
	if desc {
		sort.SliceStable(items, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(items, less)
	}
	return items
}

// PartitionByStatus groups proposals into the fixed status buckets.
// Every proposal lands in exactly one bucket; unknown statuses fall
// back to the draft column so nothing silently disappears.
func PartitionByStatus(items []ProposalWithDetails) map[Status][]ProposalWithDetails {
	buckets := make(map[Status][]ProposalWithDetails, len(Statuses))
	for _, s := range Statuses {
		buckets[s] = []ProposalWithDetails{}
	}
	for _, p := range items {
		s := p.Status
		if !s.IsValid() {
			s = StatusDraft
		}
		buckets[s] = append(buckets[s], p)
	}
	return buckets
}

// Board is the in-memory kanban projection. It supports the optimistic
// drag-and-drop protocol: Move patches a proposal into its new bucket
// immediately, and Replace resyncs the whole snapshot from the source
// of truth after the persistence call settles.
type Board struct {
	mu    sync.RWMutex
	items []ProposalWithDetails
}

// NewBoard builds a board over a snapshot of the proposal collection.
func NewBoard(items []ProposalWithDetails) *Board {
	b := &Board{}
	b.Replace(items)
	return b
}

// Buckets returns the current partition.
func (b *Board) Buckets() map[Status][]ProposalWithDetails {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return PartitionByStatus(b.items)
}

// Items returns a copy of the underlying snapshot.
func (b *Board) Items() []ProposalWithDetails {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]ProposalWithDetails, len(b.items))
	copy(out, b.items)
	return out
}

// StatusOf reports the board-visible status of a proposal.
func (b *Board) StatusOf(id int64) (Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, p := range b.items {
		if p.ID == id {
			return p.Status, true
		}
	}
	return "", false
}

// Move optimistically reassigns a proposal to a new status bucket. It
// returns the previous status and whether anything changed; dropping a
// card onto its own column is a no-op.
func (b *Board) Move(id int64, newStatus Status) (Status, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID != id {
			continue
		}
		prev := b.items[i].Status
		if prev == newStatus {
			return prev, false
		}
		b.items[i].Status = newStatus
		return prev, true
	}
	return "", false
}

// Replace swaps in a fresh snapshot wholesale. Resync is a full replace,
// never a merge, so an optimistic patch can never survive a refetch.
func (b *Board) Replace(items []ProposalWithDetails) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = make([]ProposalWithDetails, len(items))
	copy(b.items, items)
}
