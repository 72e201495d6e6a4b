package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"appointment-booking-api/internal/events"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/store"
)

// Scheduler owns the booking state machine of appointments.
type Scheduler struct {
	store  store.Store
	events events.Publisher
}

func NewScheduler(st store.Store, pub events.Publisher) *Scheduler {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Scheduler{store: st, events: pub}
}

// Slot is the admin-editable part of an appointment.
type Slot struct {
	Date  model.Date
	Start model.Clock
	End   model.Clock
}

func (s Slot) validate() error {
	if s.Date.IsZero() {
		return invalid("date is required")
	}
	if !s.Start.Valid() || !s.End.Valid() {
		return invalid("time must be within the day")
	}
	if s.End <= s.Start {
		return ErrInvalidRange
	}
	return nil
}

type BookRequest struct {
	Email string
	Name  string
}

func (s *Scheduler) Book(ctx context.Context, id string, req BookRequest) error {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return invalid("email is required")
	}

	a, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if a.Scheduled {
		return ErrAlreadyBooked
	}

	u, err := s.resolveUser(ctx, email, strings.TrimSpace(req.Name))
	if err != nil {
		return err
	}

	switch err := s.store.BookAppointment(ctx, id, u.ID); {
	case errors.Is(err, store.ErrStateChanged):
		// lost the race to another booking
		return ErrAlreadyBooked
	case errors.Is(err, store.ErrNotFound):
		return ErrAppointmentNotFound
	case err != nil:
		return fmt.Errorf("book appointment: %w", err)
	}

	s.publish(ctx, model.EventBooked, a, u.Email)
	return nil
}

// resolveUser finds the user by email, registering a password-less USER
// on first contact.
func (s *Scheduler) resolveUser(ctx context.Context, email, name string) (*model.User, error) {
	u, err := s.store.UserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user by email: %w", err)
	}

	u = &model.User{
		ID:    uuid.New().String(),
		Email: email,
		Name:  name,
		Role:  model.RoleUser,
	}
	err = s.store.CreateUser(ctx, u)
	if errors.Is(err, store.ErrDuplicate) {
		// created concurrently
		return s.store.UserByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Cancel releases a booked slot. Any USER may cancel any booking.
func (s *Scheduler) Cancel(ctx context.Context, id string, actor model.Identity) error {
	if actor.Role != model.RoleUser {
		return ErrForbidden
	}

	a, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !a.Scheduled || a.User == nil {
		return ErrNotBooked
	}

	switch err := s.store.CancelAppointment(ctx, id); {
	case errors.Is(err, store.ErrStateChanged):
		return ErrNotBooked
	case errors.Is(err, store.ErrNotFound):
		return ErrAppointmentNotFound
	case err != nil:
		return fmt.Errorf("cancel appointment: %w", err)
	}

	s.publish(ctx, model.EventCancelled, a, a.User.Email)
	return nil
}

// Create adds an unscheduled slot. A slot conflicts with every slot on the
// same date whose range it intersects, touching endpoints included.
func (s *Scheduler) Create(ctx context.Context, slot Slot) (*model.Appointment, error) {
	if err := slot.validate(); err != nil {
		return nil, err
	}

	// not serialized against concurrent creates on the same date
	existing, err := s.store.ListAppointments(ctx, store.Filter{Date: &slot.Date})
	if err != nil {
		return nil, fmt.Errorf("list by date: %w", err)
	}
	for i := range existing {
		if existing[i].Overlaps(slot.Start, slot.End) {
			return nil, ErrSlotTaken
		}
	}

	a := &model.Appointment{
		ID:        uuid.New().String(),
		Date:      slot.Date,
		StartTime: slot.Start,
		EndTime:   slot.End,
	}
	if err := s.store.CreateAppointment(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.publish(ctx, model.EventCreated, a, "")
	return a, nil
}

// Update moves an unscheduled slot. Other slots on the target date are not
// consulted.
func (s *Scheduler) Update(ctx context.Context, id string, slot Slot) (*model.Appointment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Scheduled {
		return nil, ErrBookedLocked
	}
	if err := slot.validate(); err != nil {
		return nil, err
	}

	a.Date, a.StartTime, a.EndTime = slot.Date, slot.Start, slot.End
	switch err := s.store.UpdateAppointment(ctx, a); {
	case errors.Is(err, store.ErrStateChanged):
		return nil, ErrBookedLocked
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrAppointmentNotFound
	case err != nil:
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	s.publish(ctx, model.EventUpdated, a, "")
	return a, nil
}

// Delete removes a slot whether or not it is booked.
func (s *Scheduler) Delete(ctx context.Context, id string) error {
	a, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	switch err := s.store.DeleteAppointment(ctx, id); {
	case errors.Is(err, store.ErrNotFound):
		return ErrAppointmentNotFound
	case err != nil:
		return fmt.Errorf("delete appointment: %w", err)
	}

	email := ""
	if a.User != nil {
		email = a.User.Email
	}
	s.publish(ctx, model.EventDeleted, a, email)
	return nil
}

func (s *Scheduler) Available(ctx context.Context) ([]model.Appointment, error) {
	out, err := s.store.ListAppointments(ctx, store.Filter{Scheduled: store.Bool(false)})
	if err != nil {
		return nil, fmt.Errorf("list available: %w", err)
	}
	return out, nil
}

func (s *Scheduler) ForUser(ctx context.Context, email string) ([]model.Appointment, error) {
	u, err := s.store.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user by email: %w", err)
	}

	out, err := s.store.ListAppointments(ctx, store.Filter{UserID: u.ID})
	if err != nil {
		return nil, fmt.Errorf("list by user: %w", err)
	}
	return out, nil
}

func (s *Scheduler) Get(ctx context.Context, id string) (*model.Appointment, error) {
	return s.get(ctx, id)
}

func (s *Scheduler) All(ctx context.Context) ([]model.AppointmentSummary, error) {
	list, err := s.store.ListAppointments(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	out := make([]model.AppointmentSummary, len(list))
	for i := range list {
		out[i] = model.Summarize(&list[i])
	}
	return out, nil
}

func (s *Scheduler) get(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, ErrAppointmentNotFound
	}
	a, err := s.store.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

// publish is best effort; the write it reports has already committed.
func (s *Scheduler) publish(ctx context.Context, t model.EventType, a *model.Appointment, email string) {
	ev := model.Event{
		Type:          t,
		AppointmentID: a.ID,
		Date:          a.Date,
		StartTime:     a.StartTime,
		EndTime:       a.EndTime,
		Email:         email,
		At:            time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("publish %s %s: %v", t, a.ID, err)
	}
}
