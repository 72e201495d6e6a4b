package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"appointment-booking-api/internal/middleware"
	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/service"
)

func parseSlot(req *SlotRequest) (service.Slot, error) {
	d, err := model.ParseDate(req.Date)
	if err != nil {
		return service.Slot{}, status.Error(codes.InvalidArgument, "date must be YYYY-MM-DD")
	}
	start, err := model.ParseClock(req.StartTime)
	if err != nil {
		return service.Slot{}, status.Error(codes.InvalidArgument, "startTime must be HH:MM or HH:MM:SS")
	}
	end, err := model.ParseClock(req.EndTime)
	if err != nil {
		return service.Slot{}, status.Error(codes.InvalidArgument, "endTime must be HH:MM or HH:MM:SS")
	}
	return service.Slot{Date: d, Start: start, End: end}, nil
}

func (h *Handler) BookAppointment(ctx context.Context, req *BookRequest) (*StatusResponse, error) {
	err := h.sched.Book(ctx, req.AppointmentID, service.BookRequest{Email: req.Email, Name: req.Name})
	if err != nil {
		return nil, toStatus(err)
	}
	return &StatusResponse{Message: "appointment booked"}, nil
}

func (h *Handler) ListAvailable(ctx context.Context, _ *Empty) (*AppointmentList, error) {
	list, err := h.sched.Available(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &AppointmentList{Appointments: list}, nil
}

func (h *Handler) ListUserAppointments(ctx context.Context, req *UserAppointmentsRequest) (*AppointmentList, error) {
	list, err := h.sched.ForUser(ctx, req.Email)
	if err != nil {
		return nil, toStatus(err)
	}
	return &AppointmentList{Appointments: list}, nil
}

func (h *Handler) CancelAppointment(ctx context.Context, req *AppointmentID) (*StatusResponse, error) {
	// set by the auth interceptor
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no token")
	}
	if err := h.sched.Cancel(ctx, req.ID, id); err != nil {
		return nil, toStatus(err)
	}
	return &StatusResponse{Message: "appointment cancelled"}, nil
}

func (h *Handler) GetAppointment(ctx context.Context, req *AppointmentID) (*AppointmentResponse, error) {
	a, err := h.sched.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &AppointmentResponse{Appointment: a}, nil
}

func (h *Handler) ListAllAppointments(ctx context.Context, _ *Empty) (*SummaryList, error) {
	list, err := h.sched.All(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &SummaryList{Appointments: list}, nil
}

func (h *Handler) CreateAppointment(ctx context.Context, req *SlotRequest) (*AppointmentResponse, error) {
	slot, err := parseSlot(req)
	if err != nil {
		return nil, err
	}
	a, err := h.sched.Create(ctx, slot)
	if err != nil {
		return nil, toStatus(err)
	}
	return &AppointmentResponse{Appointment: a}, nil
}

func (h *Handler) UpdateAppointment(ctx context.Context, req *SlotRequest) (*AppointmentResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	slot, err := parseSlot(req)
	if err != nil {
		return nil, err
	}
	a, err := h.sched.Update(ctx, req.ID, slot)
	if err != nil {
		return nil, toStatus(err)
	}
	return &AppointmentResponse{Appointment: a}, nil
}

func (h *Handler) DeleteAppointment(ctx context.Context, req *AppointmentID) (*StatusResponse, error) {
	if err := h.sched.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err)
	}
	return &StatusResponse{Message: "appointment deleted"}, nil
}
