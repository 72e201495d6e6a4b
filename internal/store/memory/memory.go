// Package memory is an in-process store.Store used by tests and by
// STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/store"
)

type appointment struct {
	model.Appointment
	userID string
}

type Store struct {
	mu           sync.RWMutex
	users        map[string]model.User
	emails       map[string]string
	appointments map[string]appointment
}

func New() *Store {
	return &Store{
		users:        make(map[string]model.User),
		emails:       make(map[string]string),
		appointments: make(map[string]appointment),
	}
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[u.Email]; ok {
		return store.ErrDuplicate
	}
	if _, ok := s.users[u.ID]; ok {
		return store.ErrDuplicate
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[a.ID]; ok {
		return store.ErrDuplicate
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	rec := appointment{Appointment: *a}
	if a.User != nil {
		rec.userID = a.User.ID
	}
	rec.User = nil
	s.appointments[a.ID] = rec
	return nil
}

// resolve copies rec and attaches its owner. Caller holds s.mu.
func (s *Store) resolve(rec appointment) model.Appointment {
	a := rec.Appointment
	if rec.userID != "" {
		if u, ok := s.users[rec.userID]; ok {
			a.User = &u
		}
	}
	return a
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	a := s.resolve(rec)
	return &a, nil
}

func (s *Store) ListAppointments(ctx context.Context, f store.Filter) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Appointment{}
	for _, rec := range s.appointments {
		a := s.resolve(rec)
		if f.Match(&a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// swap applies fn to the record if its scheduled flag equals want.
func (s *Store) swap(id string, want bool, fn func(*appointment)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.appointments[id]
	if !ok {
		return store.ErrNotFound
	}
	if rec.Scheduled != want {
		return store.ErrStateChanged
	}
	fn(&rec)
	rec.UpdatedAt = time.Now()
	s.appointments[id] = rec
	return nil
}

func (s *Store) BookAppointment(ctx context.Context, id, userID string) error {
	s.mu.RLock()
	_, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return store.ErrNotFound
	}
	return s.swap(id, false, func(rec *appointment) {
		rec.Scheduled = true
		rec.userID = userID
	})
}

func (s *Store) CancelAppointment(ctx context.Context, id string) error {
	return s.swap(id, true, func(rec *appointment) {
		rec.Scheduled = false
		rec.userID = ""
	})
}

func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.swap(a.ID, false, func(rec *appointment) {
		rec.Date = a.Date
		rec.StartTime = a.StartTime
		rec.EndTime = a.EndTime
	})
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appointments[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.appointments, id)
	return nil
}

var _ store.Store = (*Store)(nil)
