package memory_test

import (
	"context"
	"errors"
	"testing"

	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/store"
	"appointment-booking-api/internal/store/memory"
	"appointment-booking-api/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, memory.New())
}

func TestBookUnknownUser(t *testing.T) {
	st := memory.New()
	a := &model.Appointment{ID: "a1", StartTime: model.NewClock(9, 0, 0), EndTime: model.NewClock(10, 0, 0)}
	if err := st.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.BookAppointment(context.Background(), "a1", "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReturnsCopies(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	a := &model.Appointment{ID: "a1", StartTime: model.NewClock(9, 0, 0), EndTime: model.NewClock(10, 0, 0)}
	st.CreateAppointment(ctx, a)

	got, _ := st.GetAppointment(ctx, "a1")
	got.Scheduled = true

	again, _ := st.GetAppointment(ctx, "a1")
	if again.Scheduled {
		t.Error("caller mutation leaked into store")
	}
}
