package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Appointment is a bookable slot. User is set iff Scheduled is true.
type Appointment struct {
	ID        string    `json:"id"`
	Date      Date      `json:"date"`
	StartTime Clock     `json:"startTime"`
	EndTime   Clock     `json:"endTime"`
	Scheduled bool      `json:"scheduled"`
	User      *User     `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Overlaps reports whether the slot [start,end] collides with a.
// Touching endpoints count as a collision.
func (a *Appointment) Overlaps(start, end Clock) bool {
	return !(end < a.StartTime || start > a.EndTime)
}

type Owner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AppointmentSummary is the admin view of a slot.
type AppointmentSummary struct {
	ID        string `json:"id"`
	Date      Date   `json:"date"`
	StartTime Clock  `json:"startTime"`
	EndTime   Clock  `json:"endTime"`
	Scheduled bool   `json:"scheduled"`
	User      *Owner `json:"user"`
}

func Summarize(a *Appointment) AppointmentSummary {
	s := AppointmentSummary{
		ID:        a.ID,
		Date:      a.Date,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Scheduled: a.Scheduled,
	}
	if a.User != nil {
		s.User = &Owner{Name: a.User.Name, Email: a.User.Email}
	}
	return s
}

// Identity is the caller as established by a verified token.
type Identity struct {
	Email string
	Role  Role
}

type EventType string

const (
	EventCreated   EventType = "created"
	EventUpdated   EventType = "updated"
	EventDeleted   EventType = "deleted"
	EventBooked    EventType = "booked"
	EventCancelled EventType = "cancelled"
)

type Event struct {
	Type          EventType `json:"type"`
	AppointmentID string    `json:"appointmentId"`
	Date          Date      `json:"date"`
	StartTime     Clock     `json:"startTime"`
	EndTime       Clock     `json:"endTime"`
	Email         string    `json:"email,omitempty"`
	At            time.Time `json:"at"`
}
