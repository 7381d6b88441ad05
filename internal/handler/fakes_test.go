package handler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hostelhq/hms/internal/model"
	"github.com/hostelhq/hms/internal/queue"
	"github.com/hostelhq/hms/internal/repository"
	"github.com/hostelhq/hms/internal/utils"
)

// fakeUserStore is an in-memory UserStore keyed by id with an email index.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[uint64]model.User{}}
}

func (s *fakeUserStore) add(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID
		s.nextID++
	}
	u.Email = strings.ToLower(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	return u
}

func (s *fakeUserStore) Create(_ context.Context, u *model.User) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(u.Email)
	for _, ex := range s.users {
		if ex.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	id := s.nextID
	s.nextID++
	cp := *u
	cp.ID = id
	cp.Email = email
	cp.CreatedAt = time.Now().UTC()
	s.users[id] = cp
	return id, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByResetTokenHash(_ context.Context, tokenHash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, u := range s.users {
		if u.PasswordResetToken.Valid && u.PasswordResetToken.String == tokenHash &&
			u.PasswordResetExpires.Valid && u.PasswordResetExpires.Time.After(now) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, id uint64, firstName, lastName, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	email = strings.ToLower(email)
	for _, ex := range s.users {
		if ex.ID != id && ex.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	u.FirstName, u.LastName, u.Email = firstName, lastName, email
	s.users[id] = u
	return u, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id uint64, passwordHash string, changedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordChangedAt.Time = changedAt
	u.PasswordChangedAt.Valid = true
	u.PasswordResetToken.Valid = false
	u.PasswordResetToken.String = ""
	u.PasswordResetExpires.Valid = false
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) SetEmailVerification(_ context.Context, id uint64, code string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.EmailVerificationCode.String = code
	u.EmailVerificationCode.Valid = true
	u.EmailVerificationExpires.Time = expires
	u.EmailVerificationExpires.Valid = true
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) MarkEmailVerified(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.EmailVerified = true
	u.EmailVerificationCode.Valid = false
	u.EmailVerificationCode.String = ""
	u.EmailVerificationExpires.Valid = false
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) SetPasswordReset(_ context.Context, id uint64, tokenHash string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordResetToken.String = tokenHash
	u.PasswordResetToken.Valid = true
	u.PasswordResetExpires.Time = expires
	u.PasswordResetExpires.Valid = true
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) ClearPasswordReset(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordResetToken.Valid = false
	u.PasswordResetToken.String = ""
	u.PasswordResetExpires.Valid = false
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) SetActive(_ context.Context, id uint64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Active = active
	s.users[id] = u
	return nil
}

func (s *fakeUserStore) ListByActive(_ context.Context, active bool) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if u.Active == active {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) UpdateAdminFields(_ context.Context, id uint64, emailVerified, active *bool, role *string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	if emailVerified != nil {
		u.EmailVerified = *emailVerified
	}
	if active != nil {
		u.Active = *active
	}
	if role != nil {
		u.Role = *role
	}
	s.users[id] = u
	return u, nil
}

func (s *fakeUserStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.users))
	s.users = map[uint64]model.User{}
	return n, nil
}

// fakeTokenStore mirrors the verbatim-token table: the exact stored string
// is the liveness check and Replace rotates in place.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]uint64
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]uint64{}}
}

func (s *fakeTokenStore) Store(_ context.Context, userID uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = userID
	return nil
}

func (s *fakeTokenStore) Find(_ context.Context, token string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return 0, repository.ErrTokenNotFound
	}
	return id, nil
}

func (s *fakeTokenStore) Replace(_ context.Context, oldToken, newToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[oldToken]
	if !ok {
		return repository.ErrTokenNotFound
	}
	delete(s.tokens, oldToken)
	s.tokens[newToken] = id
	return nil
}

func (s *fakeTokenStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

// fakeMailer records sent mails and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	fail bool
	sent []sentMail
}

type sentMail struct {
	template string
	to       string
	payload  string
}

func (m *fakeMailer) Send(template string, to model.User, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{template: template, to: to.Email, payload: payload})
	return nil
}

func (m *fakeMailer) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// fakeRoomStore backs the booking flow and the room CRUD routes.
type fakeRoomStore struct {
	mu        sync.Mutex
	nextID    uint64
	rooms     map[uint64]model.Room
	occupants map[uint64][]model.Occupant
}

func newFakeRoomStore(rooms ...model.Room) *fakeRoomStore {
	s := &fakeRoomStore{
		nextID:    1,
		rooms:     map[uint64]model.Room{},
		occupants: map[uint64][]model.Occupant{},
	}
	for _, r := range rooms {
		s.rooms[r.ID] = r
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}
	return s
}

func (s *fakeRoomStore) GetByID(_ context.Context, id uint64) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrRoomNotFound
	}
	return r, nil
}

func (s *fakeRoomStore) AddTenant(_ context.Context, roomID, _ uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return repository.ErrRoomNotFound
	}
	r.TenantCount++
	s.rooms[roomID] = r
	return nil
}

func (s *fakeRoomStore) SetStatus(_ context.Context, roomID uint64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return repository.ErrRoomNotFound
	}
	r.Status = status
	s.rooms[roomID] = r
	return nil
}

func (s *fakeRoomStore) Create(_ context.Context, number string, capacity int, hostelID uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.HostelID == hostelID && r.Number == number {
			return 0, repository.ErrRoomExists
		}
	}
	id := s.nextID
	s.nextID++
	s.rooms[id] = model.Room{
		ID:       id,
		Number:   number,
		Capacity: capacity,
		HostelID: hostelID,
		Status:   model.RoomAvailable,
	}
	return id, nil
}

func (s *fakeRoomStore) CreateBulk(ctx context.Context, rooms []model.Room, hostelID uint64) error {
	for _, r := range rooms {
		if _, err := s.Create(ctx, r.Number, r.Capacity, hostelID); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeRoomStore) List(_ context.Context) ([]model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Room
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeRoomStore) ListByHostel(_ context.Context, hostelID uint64) ([]model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Room
	for _, r := range s.rooms {
		if r.HostelID == hostelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeRoomStore) Update(_ context.Context, id uint64, number string, capacity int) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return model.Room{}, repository.ErrRoomNotFound
	}
	for _, ex := range s.rooms {
		if ex.ID != id && ex.HostelID == r.HostelID && ex.Number == number {
			return model.Room{}, repository.ErrRoomExists
		}
	}
	r.Number = number
	r.Capacity = capacity
	s.rooms[id] = r
	return r, nil
}

func (s *fakeRoomStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(s.rooms, id)
	delete(s.occupants, id)
	return nil
}

func (s *fakeRoomStore) Occupants(_ context.Context, roomID uint64) ([]model.Occupant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.occupants[roomID], nil
}

// fakeHostelStore backs the hostel CRUD routes; room counts are set by
// the tests directly.
type fakeHostelStore struct {
	mu      sync.Mutex
	nextID  uint64
	hostels map[uint64]model.Hostel
}

func newFakeHostelStore(hostels ...model.Hostel) *fakeHostelStore {
	s := &fakeHostelStore{nextID: 1, hostels: map[uint64]model.Hostel{}}
	for _, hs := range hostels {
		s.hostels[hs.ID] = hs
		if hs.ID >= s.nextID {
			s.nextID = hs.ID + 1
		}
	}
	return s
}

func (s *fakeHostelStore) Create(_ context.Context, name, address string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slug := utils.Slugify(name)
	for _, hs := range s.hostels {
		if hs.Slug == slug {
			return 0, repository.ErrHostelExists
		}
	}
	id := s.nextID
	s.nextID++
	s.hostels[id] = model.Hostel{ID: id, Name: name, Slug: slug, Address: address}
	return id, nil
}

func (s *fakeHostelStore) GetByID(_ context.Context, id uint64) (model.Hostel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hs, ok := s.hostels[id]
	if !ok {
		return model.Hostel{}, repository.ErrHostelNotFound
	}
	return hs, nil
}

func (s *fakeHostelStore) List(_ context.Context) ([]model.Hostel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Hostel
	for _, hs := range s.hostels {
		out = append(out, hs)
	}
	return out, nil
}

func (s *fakeHostelStore) Update(_ context.Context, id uint64, name, address string) (model.Hostel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hs, ok := s.hostels[id]
	if !ok {
		return model.Hostel{}, repository.ErrHostelNotFound
	}
	slug := utils.Slugify(name)
	for _, ex := range s.hostels {
		if ex.ID != id && ex.Slug == slug {
			return model.Hostel{}, repository.ErrHostelExists
		}
	}
	hs.Name, hs.Slug, hs.Address = name, slug, address
	s.hostels[id] = hs
	return hs, nil
}

func (s *fakeHostelStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hostels[id]; !ok {
		return repository.ErrHostelNotFound
	}
	delete(s.hostels, id)
	return nil
}

// fakeBookingStore counts bookings.
type fakeBookingStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   []struct {
		roomID, userID uint64
		price          float64
	}
}

func (s *fakeBookingStore) Create(_ context.Context, roomID, userID uint64, price float64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.rows = append(s.rows, struct {
		roomID, userID uint64
		price          float64
	}{roomID, userID, price})
	return s.nextID, nil
}

// fakePublisher records published booking events.
type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
}

func (p *fakePublisher) BookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}
