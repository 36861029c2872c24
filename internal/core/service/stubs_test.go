package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory repositories. Each honours the conditional-write contract of its
// port so the services can be exercised under concurrency.
// ---------------------------------------------------------------------------

type memUsers struct {
	mu         sync.Mutex
	byEmail    map[string]*domain.User
	setRoleErr error
	incErr     error
}

func newMemUsers(users ...*domain.User) *memUsers {
	m := &memUsers{byEmail: map[string]*domain.User{}}
	for _, u := range users {
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *memUsers) InsertIfAbsent(_ context.Context, u *domain.User) (*domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byEmail[u.Email]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	out := cp
	return &out, true, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) List(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.byEmail))
	for _, u := range m.byEmail {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memUsers) SetRole(_ context.Context, email string, role domain.Role, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setRoleErr != nil {
		return m.setRoleErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = at
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, email string, p domain.ProfileUpdate, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Name, u.Bio, u.Image, u.UpdatedAt = p.Name, p.Bio, p.Image, at
	return nil
}

func (m *memUsers) Increment(_ context.Context, email string, d domain.CounterDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incErr != nil {
		return m.incErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.UserActions.ContestsParticipated += d.ContestsParticipated
	u.UserActions.ContestsWon += d.ContestsWon
	u.UserActions.TotalWinnings += d.TotalWinnings
	u.CreatorActions.ContestsCreated += d.ContestsCreated
	u.CreatorActions.ContestsCompleted += d.ContestsCompleted
	u.CreatorActions.TotalPrizePaid += d.TotalPrizePaid
	u.AdminActions.Approved += d.Approved
	u.AdminActions.Rejected += d.Rejected
	u.AdminActions.Deleted += d.Deleted
	return nil
}

func (m *memUsers) get(email string) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byEmail[email]
}

type memRequests struct {
	mu      sync.Mutex
	byEmail map[string]*domain.CreatorRequest
}

func newMemRequests() *memRequests {
	return &memRequests{byEmail: map[string]*domain.CreatorRequest{}}
}

func (m *memRequests) Create(_ context.Context, r *domain.CreatorRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[r.Email]; ok {
		return domain.ErrAlreadyRequested
	}
	cp := *r
	m.byEmail[r.Email] = &cp
	return nil
}

func (m *memRequests) List(_ context.Context) ([]*domain.CreatorRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.CreatorRequest, 0, len(m.byEmail))
	for _, r := range m.byEmail {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (m *memRequests) Take(_ context.Context, email string) (*domain.CreatorRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrCreatorRequestNotFound
	}
	delete(m.byEmail, email)
	return r, nil
}

type memContests struct {
	mu      sync.Mutex
	seq     int
	byID    map[string]*domain.Contest
	findErr error
}

func newMemContests(contests ...*domain.Contest) *memContests {
	m := &memContests{byID: map[string]*domain.Contest{}}
	for _, c := range contests {
		m.byID[c.ID] = c
	}
	return m
}

func (m *memContests) Create(_ context.Context, c *domain.Contest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *c
	cp.ID = fmt.Sprintf("contest-%d", m.seq)
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *memContests) FindByID(_ context.Context, id string) (*domain.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrContestNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memContests) FindByIDs(_ context.Context, ids []string) ([]*domain.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Contest
	for _, id := range ids {
		if c, ok := m.byID[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memContests) List(_ context.Context, f ports.ContestFilter) ([]*domain.Contest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Contest
	for _, c := range m.byID {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.CreatorEmail != "" && c.Creator.Email != f.CreatorEmail {
			continue
		}
		if f.WinnerEmail != "" && (c.Winner.Status != domain.WinnerDeclared || c.Winner.Email != f.WinnerEmail) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.ByPopularity && out[i].ParticipantCount != out[j].ParticipantCount {
			return out[i].ParticipantCount > out[j].ParticipantCount
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memContests) UpdateDetails(_ context.Context, id, creatorEmail string, d domain.ContestDetails, slug string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Status != domain.ContestPending || c.Creator.Email != creatorEmail {
		return domain.ErrContestNotPending
	}
	c.Slug, c.Name, c.Description, c.Image = slug, d.Name, d.Description, d.Image
	c.ContestType, c.EntryFee, c.PrizeMoney = d.ContestType, d.EntryFee, d.PrizeMoney
	c.TaskInstruction, c.Deadline, c.UpdatedAt = d.TaskInstruction, d.Deadline, at
	return nil
}

func (m *memContests) Decide(_ context.Context, id string, outcome domain.ContestStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return domain.ErrContestNotFound
	}
	if c.Status != domain.ContestPending {
		return domain.ErrAlreadyProcessed
	}
	c.Status = outcome
	c.UpdatedAt = at
	return nil
}

func (m *memContests) DeletePendingByCreator(_ context.Context, id, creatorEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Status != domain.ContestPending || c.Creator.Email != creatorEmail {
		return domain.ErrContestNotPending
	}
	delete(m.byID, id)
	return nil
}

func (m *memContests) DeleteUnapproved(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Status == domain.ContestApproved {
		return domain.ErrContestApproved
	}
	delete(m.byID, id)
	return nil
}

func (m *memContests) IncrementParticipants(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return domain.ErrContestNotFound
	}
	c.ParticipantCount++
	return nil
}

func (m *memContests) ClaimWinner(_ context.Context, id string, w domain.Winner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok || c.Winner.Status != domain.WinnerPending {
		return domain.ErrAlreadyDeclared
	}
	c.Winner = w
	return nil
}

func (m *memContests) get(id string) domain.Contest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byID[id]
}

type memSubmissions struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*domain.Submission
}

func newMemSubmissions(subs ...*domain.Submission) *memSubmissions {
	m := &memSubmissions{byID: map[string]*domain.Submission{}}
	for _, s := range subs {
		m.byID[s.ID] = s
	}
	return m
}

func (m *memSubmissions) Upsert(_ context.Context, s *domain.Submission) (*domain.Submission, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.ContestID == s.ContestID && existing.ParticipantEmail == s.ParticipantEmail {
			existing.SubmissionLink = s.SubmissionLink
			existing.UpdatedAt = s.UpdatedAt
			cp := *existing
			return &cp, false, nil
		}
	}
	m.seq++
	cp := *s
	cp.ID = fmt.Sprintf("sub-%d", m.seq)
	m.byID[cp.ID] = &cp
	out := cp
	return &out, true, nil
}

func (m *memSubmissions) FindByID(_ context.Context, id string) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubmissions) FindByContestAndParticipant(_ context.Context, contestID, email string) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.ContestID == contestID && s.ParticipantEmail == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrSubmissionNotFound
}

func (m *memSubmissions) ListByContest(_ context.Context, contestID string) ([]*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Submission
	for _, s := range m.byID {
		if s.ContestID == contestID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m *memSubmissions) MarkResults(_ context.Context, contestID, winnerID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.byID[winnerID]
	if !ok || w.ContestID != contestID {
		return domain.ErrSubmissionNotFound
	}
	for _, s := range m.byID {
		if s.ContestID != contestID {
			continue
		}
		s.Status = domain.SubmissionNotSelected
		if s.ID == winnerID {
			s.Status = domain.SubmissionWinner
		}
		s.UpdatedAt = at
	}
	return nil
}

func (m *memSubmissions) get(id string) domain.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byID[id]
}

type memPayments struct {
	mu      sync.Mutex
	seq     int
	byTx    map[string]*domain.Payment
	inserts int
}

func newMemPayments(payments ...*domain.Payment) *memPayments {
	m := &memPayments{byTx: map[string]*domain.Payment{}}
	for _, p := range payments {
		m.byTx[p.TransactionID] = p
	}
	return m
}

func (m *memPayments) InsertIfAbsent(_ context.Context, p *domain.Payment) (*domain.Payment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byTx[p.TransactionID]; ok {
		cp := *existing
		return &cp, false, nil
	}
	m.seq++
	m.inserts++
	cp := *p
	cp.ID = fmt.Sprintf("pay-%d", m.seq)
	m.byTx[p.TransactionID] = &cp
	out := cp
	return &out, true, nil
}

func (m *memPayments) FindByTransactionID(_ context.Context, tx string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byTx[tx]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) ExistsPaid(_ context.Context, contestID, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byTx {
		if p.ContestID == contestID && p.ParticipantEmail == email && p.Status == domain.PaymentPaid {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPayments) ListByParticipant(_ context.Context, email string) ([]*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Payment
	for _, p := range m.byTx {
		if p.ParticipantEmail == email {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out, nil
}

func (m *memPayments) insertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserts
}

// ---------------------------------------------------------------------------
// Providers
// ---------------------------------------------------------------------------

type stubGateway struct {
	mu          sync.Mutex
	url         string
	createErr   error
	created     []ports.CheckoutSessionRequest
	sessions    map[string]*domain.CheckoutSession
	retrieveErr error
	retrieves   int
}

func (g *stubGateway) CreateSession(_ context.Context, req ports.CheckoutSessionRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return "", g.createErr
	}
	g.created = append(g.created, req)
	return g.url, nil
}

func (g *stubGateway) RetrieveSession(_ context.Context, id string) (*domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retrieves++
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	s, ok := g.sessions[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *s
	return &cp, nil
}

func (g *stubGateway) retrieveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.retrieves
}

type memCache struct {
	mu     sync.Mutex
	items  map[string]ports.ConfirmResult
	getErr error
}

func newMemCache() *memCache {
	return &memCache{items: map[string]ports.ConfirmResult{}}
}

func (c *memCache) Get(_ context.Context, id string) (*ports.ConfirmResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	r, ok := c.items[id]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *memCache) Put(_ context.Context, id string, r ports.ConfirmResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = r
	return nil
}

// countingParticipants records participant-count bumps without a repository.
type countingParticipants struct {
	mu    sync.Mutex
	calls map[string]int
	err   error
}

func (p *countingParticipants) IncrementParticipantCount(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.calls == nil {
		p.calls = map[string]int{}
	}
	p.calls[id]++
	return nil
}

func (p *countingParticipants) count(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[id]
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

var (
	fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	admin       = ports.Actor{Email: "admin@example.com", Role: domain.RoleAdmin}
	creator     = ports.Actor{Email: "creator@example.com", Role: domain.RoleCreator}
	participant = ports.Actor{Email: "alice@example.com", Role: domain.RoleUser}
)

func seedUsers() *memUsers {
	return newMemUsers(
		&domain.User{Email: admin.Email, Name: "Admin", Role: domain.RoleAdmin},
		&domain.User{Email: creator.Email, Name: "Carol", Image: "carol.png", Role: domain.RoleCreator},
		&domain.User{Email: participant.Email, Name: "Alice", Role: domain.RoleUser},
		&domain.User{Email: "bob@example.com", Name: "Bob", Role: domain.RoleUser},
	)
}

func approvedContest(id string) *domain.Contest {
	return &domain.Contest{
		ID:          id,
		Name:        "Logo Sprint",
		Description: "Design a logo",
		Image:       "logo.png",
		ContestType: "design",
		EntryFee:    10,
		PrizeMoney:  250,
		Deadline:    fixedNow.Add(48 * time.Hour),
		Creator:     domain.Creator{Email: creator.Email, Name: "Carol"},
		Status:      domain.ContestApproved,
		Winner:      domain.Winner{Status: domain.WinnerPending},
		CreatedAt:   fixedNow.Add(-time.Hour),
	}
}

func pendingContest(id string) *domain.Contest {
	c := approvedContest(id)
	c.Status = domain.ContestPending
	return c
}

func paidBy(contestID, email, tx string) *domain.Payment {
	return &domain.Payment{
		ID:               "pay-" + tx,
		TransactionID:    tx,
		ContestID:        contestID,
		ParticipantEmail: email,
		Status:           domain.PaymentPaid,
		PaidAt:           fixedNow.Add(-time.Minute),
	}
}
