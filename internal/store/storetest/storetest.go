// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/store"
)

// Run exercises st. Records use random ids and emails so the suite can run
// against a shared database.
func Run(t *testing.T, st store.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, st) })
	t.Run("appointments", func(t *testing.T) { testAppointments(t, st) })
	t.Run("conditional writes", func(t *testing.T) { testConditional(t, st) })
	t.Run("concurrent booking", func(t *testing.T) { testConcurrentBooking(t, st) })
}

func newUser(t *testing.T, st store.Store) *model.User {
	t.Helper()
	u := &model.User{
		ID:    uuid.New().String(),
		Email: fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8]),
		Name:  "Test User",
		Role:  model.RoleUser,
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// uniqueDate keeps parallel runs on a shared database from colliding.
func uniqueDate() model.Date {
	n := int(uuid.New().ID() % 300000)
	return model.DateOf(model.Date{Year: 2200, Month: 1, Day: 1}.Time().AddDate(0, 0, n))
}

func newAppointment(t *testing.T, st store.Store, d model.Date, startHour int) *model.Appointment {
	t.Helper()
	a := &model.Appointment{
		ID:        uuid.New().String(),
		Date:      d,
		StartTime: model.NewClock(startHour, 0, 0),
		EndTime:   model.NewClock(startHour+1, 0, 0),
	}
	if err := st.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return a
}

func testUsers(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := newUser(t, st)

	got, err := st.UserByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if got.ID != u.ID || got.Name != u.Name || got.Role != model.RoleUser {
		t.Errorf("unexpected user %+v", got)
	}

	if _, err := st.UserByID(ctx, u.ID); err != nil {
		t.Fatalf("by id: %v", err)
	}

	dup := &model.User{ID: uuid.New().String(), Email: u.Email, Role: model.RoleUser}
	if err := st.CreateUser(ctx, dup); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if _, err := st.UserByEmail(ctx, "nobody-"+uuid.New().String()+"@nowhere.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func testAppointments(t *testing.T, st store.Store) {
	ctx := context.Background()
	d := uniqueDate()

	late := newAppointment(t, st, d, 14)
	early := newAppointment(t, st, d, 9)

	got, err := st.GetAppointment(ctx, early.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date != d || got.StartTime != early.StartTime || got.EndTime != early.EndTime {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Scheduled || got.User != nil {
		t.Error("new appointment should be unscheduled")
	}

	list, err := st.ListAppointments(ctx, store.Filter{Date: &d})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 appointments on %s, got %d", d, len(list))
	}
	if list[0].ID != early.ID || list[1].ID != late.ID {
		t.Error("list not ordered by start time")
	}

	if err := st.DeleteAppointment(ctx, late.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetAppointment(ctx, late.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.DeleteAppointment(ctx, late.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func testConditional(t *testing.T, st store.Store) {
	ctx := context.Background()
	u := newUser(t, st)
	a := newAppointment(t, st, uniqueDate(), 10)

	if err := st.BookAppointment(ctx, a.ID, u.ID); err != nil {
		t.Fatalf("book: %v", err)
	}
	got, _ := st.GetAppointment(ctx, a.ID)
	if !got.Scheduled || got.User == nil || got.User.Email != u.Email {
		t.Fatalf("expected booked by %s, got %+v", u.Email, got)
	}

	mine, err := st.ListAppointments(ctx, store.Filter{UserID: u.ID})
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != a.ID {
		t.Errorf("expected 1 appointment for user, got %d", len(mine))
	}

	other := newUser(t, st)
	if err := st.BookAppointment(ctx, a.ID, other.ID); !errors.Is(err, store.ErrStateChanged) {
		t.Errorf("expected ErrStateChanged on double book, got %v", err)
	}

	moved := *a
	moved.StartTime = model.NewClock(15, 0, 0)
	moved.EndTime = model.NewClock(16, 0, 0)
	if err := st.UpdateAppointment(ctx, &moved); !errors.Is(err, store.ErrStateChanged) {
		t.Errorf("expected ErrStateChanged updating booked slot, got %v", err)
	}

	if err := st.CancelAppointment(ctx, a.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ = st.GetAppointment(ctx, a.ID)
	if got.Scheduled || got.User != nil {
		t.Errorf("expected unscheduled after cancel, got %+v", got)
	}
	if err := st.CancelAppointment(ctx, a.ID); !errors.Is(err, store.ErrStateChanged) {
		t.Errorf("expected ErrStateChanged on double cancel, got %v", err)
	}

	if err := st.UpdateAppointment(ctx, &moved); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = st.GetAppointment(ctx, a.ID)
	if got.StartTime != moved.StartTime || got.EndTime != moved.EndTime {
		t.Errorf("update not applied: %+v", got)
	}

	missing := uuid.New().String()
	if err := st.BookAppointment(ctx, missing, u.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound booking unknown slot, got %v", err)
	}
	if err := st.CancelAppointment(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound cancelling unknown slot, got %v", err)
	}

	free, err := st.ListAppointments(ctx, store.Filter{Scheduled: store.Bool(false)})
	if err != nil {
		t.Fatalf("list free: %v", err)
	}
	for _, f := range free {
		if f.Scheduled {
			t.Fatalf("scheduled appointment %s in free list", f.ID)
		}
	}
}

func testConcurrentBooking(t *testing.T, st store.Store) {
	ctx := context.Background()
	a := newAppointment(t, st, uniqueDate(), 8)

	const n = 10
	users := make([]*model.User, n)
	for i := range users {
		users[i] = newUser(t, st)
	}

	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- st.BookAppointment(ctx, a.ID, users[i].ID)
		}(i)
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, store.ErrStateChanged):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if conflicts != n-1 {
		t.Errorf("expected %d conflicts, got %d", n-1, conflicts)
	}
}
