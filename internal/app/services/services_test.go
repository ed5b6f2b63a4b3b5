package services

import (
	"context"
	"sort"
	"time"

	appauth "github.com/uniconnect/backend/internal/app/auth"
	"github.com/uniconnect/backend/internal/app/models"
	"github.com/uniconnect/backend/internal/app/models/dto"
	"github.com/uniconnect/backend/internal/pkg/apperrors"
)

// In-memory fakes shared by the service tests. They mirror the repository
// error contracts so services see the same sentinels as in production.

type fakeUserStore struct {
	users map[int64]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[int64]*models.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type fakeConnectionStore struct {
	nextID int64
	conns  map[int64]*models.Connection
}

func newFakeConnectionStore() *fakeConnectionStore {
	return &fakeConnectionStore{conns: make(map[int64]*models.Connection)}
}

func (f *fakeConnectionStore) Create(_ context.Context, conn *models.Connection) error {
	for _, existing := range f.conns {
		if (existing.RequesterID == conn.RequesterID && existing.RecipientID == conn.RecipientID) ||
			(existing.RequesterID == conn.RecipientID && existing.RecipientID == conn.RequesterID) {
			return apperrors.ErrConnectionExists
		}
	}
	f.nextID++
	conn.ID = f.nextID
	conn.CreatedAt = time.Now()
	f.conns[conn.ID] = conn
	return nil
}

func (f *fakeConnectionStore) GetByID(_ context.Context, id int64) (*models.Connection, error) {
	if c, ok := f.conns[id]; ok {
		return c, nil
	}
	return nil, apperrors.ErrConnectionNotFound
}

func (f *fakeConnectionStore) GetBetween(_ context.Context, a, b int64) (*models.Connection, error) {
	for _, c := range f.conns {
		if (c.RequesterID == a && c.RecipientID == b) || (c.RequesterID == b && c.RecipientID == a) {
			return c, nil
		}
	}
	return nil, apperrors.ErrConnectionNotFound
}

func (f *fakeConnectionStore) UpdateStatus(_ context.Context, id int64, from, to models.ConnectionStatus) error {
	c, ok := f.conns[id]
	if !ok {
		return apperrors.ErrConnectionNotFound
	}
	if c.Status != from {
		return apperrors.ErrAlreadyResponded
	}
	now := time.Now()
	c.Status = to
	c.RespondedAt = &now
	return nil
}

func (f *fakeConnectionStore) SetBlocked(_ context.Context, id int64) error {
	c, ok := f.conns[id]
	if !ok {
		return apperrors.ErrConnectionNotFound
	}
	c.Status = models.ConnectionBlocked
	return nil
}

func (f *fakeConnectionStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.conns[id]; !ok {
		return apperrors.ErrConnectionNotFound
	}
	delete(f.conns, id)
	return nil
}

func (f *fakeConnectionStore) ListIncomingPending(_ context.Context, userID int64, _ uint64, _ int) ([]*models.Connection, int64, error) {
	return f.filter(func(c *models.Connection) bool {
		return c.RecipientID == userID && c.Status == models.ConnectionPending
	})
}

func (f *fakeConnectionStore) ListSentPending(_ context.Context, userID int64, _ uint64, _ int) ([]*models.Connection, int64, error) {
	return f.filter(func(c *models.Connection) bool {
		return c.RequesterID == userID && c.Status == models.ConnectionPending
	})
}

func (f *fakeConnectionStore) ListAccepted(_ context.Context, userID int64, _ uint64, _ int) ([]*models.Connection, int64, error) {
	return f.filter(func(c *models.Connection) bool {
		return c.Involves(userID) && c.Status == models.ConnectionAccepted
	})
}

func (f *fakeConnectionStore) filter(keep func(*models.Connection) bool) ([]*models.Connection, int64, error) {
	var out []*models.Connection
	for _, c := range f.conns {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

type fakeMessageStore struct {
	nextID   int64
	messages []*models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (f *fakeMessageStore) Create(_ context.Context, message *models.Message) error {
	f.nextID++
	message.ID = f.nextID
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeMessageStore) GetByID(_ context.Context, id int64) (*models.Message, error) {
	for _, m := range f.messages {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, apperrors.ErrMessageNotFound
}

func (f *fakeMessageStore) GetConversation(_ context.Context, userA, userB int64, before *time.Time, beforeID int64, limit int) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range f.messages {
		if m.IsDeleted {
			continue
		}
		pair := (m.SenderID == userA && m.RecipientID == userB) || (m.SenderID == userB && m.RecipientID == userA)
		if !pair {
			continue
		}
		if before != nil {
			older := m.CreatedAt.Before(*before)
			if beforeID > 0 {
				older = older || (m.CreatedAt.Equal(*before) && m.ID < beforeID)
			}
			if !older {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessageStore) ListConversations(_ context.Context, userID int64) ([]*models.Conversation, error) {
	byPeer := make(map[int64]*models.Conversation)
	for _, m := range f.messages {
		if m.IsDeleted || (m.SenderID != userID && m.RecipientID != userID) {
			continue
		}
		peerID := m.SenderID
		if peerID == userID {
			peerID = m.RecipientID
		}
		conv, ok := byPeer[peerID]
		if !ok {
			conv = &models.Conversation{Peer: &models.User{ID: peerID}}
			byPeer[peerID] = conv
		}
		if conv.LastMessage == nil || m.CreatedAt.After(conv.LastMessage.CreatedAt) {
			conv.LastMessage = m
		}
		if m.RecipientID == userID && !m.IsRead {
			conv.UnreadCount++
		}
	}
	var out []*models.Conversation
	for _, conv := range byPeer {
		out = append(out, conv)
	}
	return out, nil
}

func (f *fakeMessageStore) MarkConversationRead(_ context.Context, userID, peerID int64) (int, error) {
	count := 0
	now := time.Now()
	for _, m := range f.messages {
		if m.SenderID == peerID && m.RecipientID == userID && !m.IsRead && !m.IsDeleted {
			m.IsRead = true
			m.ReadAt = &now
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageStore) UnreadCount(_ context.Context, userID int64) (int, error) {
	count := 0
	for _, m := range f.messages {
		if m.RecipientID == userID && !m.IsRead && !m.IsDeleted {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageStore) SoftDelete(_ context.Context, id, senderID int64) error {
	for _, m := range f.messages {
		if m.ID == id {
			if m.SenderID != senderID {
				return apperrors.NewForbiddenError("You can only delete your own messages")
			}
			m.IsDeleted = true
			return nil
		}
	}
	return apperrors.ErrMessageNotFound
}

type fakeJobStore struct {
	nextID int64
	jobs   map[int64]*models.Job
	apps   map[int64]*models.JobApplication
}

func newFakeJobStore(jobs ...*models.Job) *fakeJobStore {
	f := &fakeJobStore{jobs: make(map[int64]*models.Job), apps: make(map[int64]*models.JobApplication)}
	for _, j := range jobs {
		if j.ID > f.nextID {
			f.nextID = j.ID
		}
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobStore) Create(_ context.Context, job *models.Job) error {
	f.nextID++
	job.ID = f.nextID
	job.CreatedAt = time.Now()
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobStore) GetByID(_ context.Context, id int64) (*models.Job, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, apperrors.ErrJobNotFound
}

func (f *fakeJobStore) List(_ context.Context, _ *dto.JobFilterRequest, _ uint64, _ int) ([]*models.Job, int64, error) {
	var out []*models.Job
	now := time.Now()
	for _, j := range f.jobs {
		if j.IsActive && (j.ExpiresAt == nil || j.ExpiresAt.After(now)) {
			out = append(out, j)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeJobStore) ListByPoster(_ context.Context, posterID int64, _ uint64, _ int) ([]*models.Job, int64, error) {
	var out []*models.Job
	for _, j := range f.jobs {
		if j.PostedByID == posterID {
			out = append(out, j)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeJobStore) Update(_ context.Context, job *models.Job) error {
	if _, ok := f.jobs[job.ID]; !ok {
		return apperrors.ErrJobNotFound
	}
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.jobs[id]; !ok {
		return apperrors.ErrJobNotFound
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeJobStore) CreateApplication(_ context.Context, app *models.JobApplication) error {
	if _, ok := f.jobs[app.JobID]; !ok {
		return apperrors.ErrJobNotFound
	}
	for _, existing := range f.apps {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return apperrors.ErrAlreadyApplied
		}
	}
	f.nextID++
	app.ID = f.nextID
	app.AppliedAt = time.Now()
	f.apps[app.ID] = app
	return nil
}

func (f *fakeJobStore) GetApplication(_ context.Context, id int64) (*models.JobApplication, error) {
	if a, ok := f.apps[id]; ok {
		return a, nil
	}
	return nil, apperrors.ErrApplicationMissing
}

func (f *fakeJobStore) ListApplications(_ context.Context, jobID int64) ([]*models.JobApplication, error) {
	var out []*models.JobApplication
	for _, a := range f.apps {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeJobStore) ListApplicationsByApplicant(_ context.Context, applicantID int64) ([]*models.JobApplication, error) {
	var out []*models.JobApplication
	for _, a := range f.apps {
		if a.ApplicantID == applicantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeJobStore) UpdateApplicationStatus(_ context.Context, id int64, status models.ApplicationStatus) error {
	a, ok := f.apps[id]
	if !ok {
		return apperrors.ErrApplicationMissing
	}
	a.Status = status
	return nil
}

type notifierCall struct {
	kind    string
	userA   int64
	userB   int64
	payload interface{}
}

type fakeNotifier struct {
	calls []notifierCall
}

func (f *fakeNotifier) DeliverMessage(message *models.Message) {
	f.calls = append(f.calls, notifierCall{kind: "message", userA: message.SenderID, userB: message.RecipientID, payload: message})
}

func (f *fakeNotifier) NotifyMessagesRead(readerID, senderID int64, count int) {
	f.calls = append(f.calls, notifierCall{kind: "read", userA: readerID, userB: senderID, payload: count})
}

func (f *fakeNotifier) NotifyConnectionAccepted(conn *models.Connection) {
	f.calls = append(f.calls, notifierCall{kind: "accepted", userA: conn.RequesterID, userB: conn.RecipientID, payload: conn})
}

func (f *fakeNotifier) callsOf(kind string) []notifierCall {
	var out []notifierCall
	for _, c := range f.calls {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// newGate builds the authorization service over the same fakes the services use
func newGate(users *fakeUserStore, conns *fakeConnectionStore, jobs *fakeJobStore) *appauth.AuthorizationService {
	if jobs == nil {
		jobs = newFakeJobStore()
	}
	return appauth.NewAuthorizationService(users, conns, jobs)
}
