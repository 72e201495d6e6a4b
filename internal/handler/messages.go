package handler

import "appointment-booking-api/internal/model"

type Empty struct{}

type SignupRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role,omitempty"`
}

type SignupResponse struct {
	UserID  string     `json:"userId"`
	Email   string     `json:"email"`
	Role    model.Role `json:"role"`
	Message string     `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string     `json:"token"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

type BookRequest struct {
	AppointmentID string `json:"appointmentId"`
	Email         string `json:"email"`
	Name          string `json:"name"`
}

type UserAppointmentsRequest struct {
	Email string `json:"email"`
}

type AppointmentID struct {
	ID string `json:"id"`
}

// SlotRequest carries a date as YYYY-MM-DD and times as HH:MM[:SS].
type SlotRequest struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type StatusResponse struct {
	Message string `json:"message"`
}

type AppointmentResponse struct {
	Appointment *model.Appointment `json:"appointment"`
}

type AppointmentList struct {
	Appointments []model.Appointment `json:"appointments"`
}

type SummaryList struct {
	Appointments []model.AppointmentSummary `json:"appointments"`
}
