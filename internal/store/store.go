// Package store defines the persistence contract shared by the postgres,
// mongo and memory backends.
package store

import (
	"context"
	"errors"

	"appointment-booking-api/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrStateChanged is returned by the conditional writes when the
	// appointment exists but its scheduled flag is not the expected one.
	ErrStateChanged = errors.New("appointment state changed")
)

type Users interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
}

// Appointments returns appointments with User populated for scheduled
// slots, ordered by date then start time.
type Appointments interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, f Filter) ([]model.Appointment, error)

	// BookAppointment attaches userID only while the slot is unscheduled.
	BookAppointment(ctx context.Context, id, userID string) error
	// CancelAppointment detaches the owner only while the slot is scheduled.
	CancelAppointment(ctx context.Context, id string) error
	// UpdateAppointment rewrites date and times only while unscheduled.
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
	DeleteAppointment(ctx context.Context, id string) error
}

type Store interface {
	Users
	Appointments
}

// Filter narrows ListAppointments. Zero fields match everything.
type Filter struct {
	Scheduled *bool
	Date      *model.Date
	UserID    string
}

func (f Filter) Match(a *model.Appointment) bool {
	if f.Scheduled != nil && a.Scheduled != *f.Scheduled {
		return false
	}
	if f.Date != nil && a.Date != *f.Date {
		return false
	}
	if f.UserID != "" && (a.User == nil || a.User.ID != f.UserID) {
		return false
	}
	return true
}

func Bool(b bool) *bool { return &b }
