package handler

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"appointment-booking-api/internal/model"
)

// Message is implemented by every BookingService request and response.
// The encoding is protobuf wire format; field numbers are listed next to
// each Unmarshal.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte
	u   uint64
}

func (f field) is(num protowire.Number, typ protowire.Type) bool {
	return f.num == num && f.typ == typ
}

func (f field) str() string { return string(f.raw) }

// walk calls fn for every field in b. Unknown fields are consumed and
// passed along so callers can ignore them.
func walk(b []byte, fn func(field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.BytesType:
			f.raw, n = protowire.ConsumeBytes(b)
		case protowire.VarintType:
			f.u, n = protowire.ConsumeVarint(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendMessage(b []byte, num protowire.Number, inner []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

func appendTimestamp(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	inner, err := proto.Marshal(timestamppb.New(t))
	if err != nil {
		return b
	}
	return appendMessage(b, num, inner)
}

func parseTimestamp(raw []byte) (time.Time, error) {
	ts := &timestamppb.Timestamp{}
	if err := proto.Unmarshal(raw, ts); err != nil {
		return time.Time{}, err
	}
	return ts.AsTime(), nil
}

func appendDate(b []byte, num protowire.Number, d model.Date) []byte {
	if d.IsZero() {
		return b
	}
	return appendString(b, num, d.String())
}

// ----- model -----

// user: 1 id, 2 email, 3 name, 4 role, 5 created_at, 6 updated_at
func appendUser(b []byte, u *model.User) []byte {
	b = appendString(b, 1, u.ID)
	b = appendString(b, 2, u.Email)
	b = appendString(b, 3, u.Name)
	b = appendString(b, 4, string(u.Role))
	b = appendTimestamp(b, 5, u.CreatedAt)
	return appendTimestamp(b, 6, u.UpdatedAt)
}

func parseUser(raw []byte) (*model.User, error) {
	u := &model.User{}
	err := walk(raw, func(f field) error {
		var err error
		switch {
		case f.is(1, protowire.BytesType):
			u.ID = f.str()
		case f.is(2, protowire.BytesType):
			u.Email = f.str()
		case f.is(3, protowire.BytesType):
			u.Name = f.str()
		case f.is(4, protowire.BytesType):
			u.Role = model.Role(f.str())
		case f.is(5, protowire.BytesType):
			u.CreatedAt, err = parseTimestamp(f.raw)
		case f.is(6, protowire.BytesType):
			u.UpdatedAt, err = parseTimestamp(f.raw)
		}
		return err
	})
	return u, err
}

// appointment: 1 id, 2 date, 3 start_time, 4 end_time, 5 scheduled,
// 6 user, 7 created_at, 8 updated_at
func appendAppointment(b []byte, a *model.Appointment) []byte {
	b = appendString(b, 1, a.ID)
	b = appendDate(b, 2, a.Date)
	b = appendString(b, 3, a.StartTime.String())
	b = appendString(b, 4, a.EndTime.String())
	b = appendBool(b, 5, a.Scheduled)
	if a.User != nil {
		b = appendMessage(b, 6, appendUser(nil, a.User))
	}
	b = appendTimestamp(b, 7, a.CreatedAt)
	return appendTimestamp(b, 8, a.UpdatedAt)
}

func parseAppointment(raw []byte) (model.Appointment, error) {
	var a model.Appointment
	err := walk(raw, func(f field) error {
		var err error
		switch {
		case f.is(1, protowire.BytesType):
			a.ID = f.str()
		case f.is(2, protowire.BytesType):
			a.Date, err = model.ParseDate(f.str())
		case f.is(3, protowire.BytesType):
			a.StartTime, err = model.ParseClock(f.str())
		case f.is(4, protowire.BytesType):
			a.EndTime, err = model.ParseClock(f.str())
		case f.is(5, protowire.VarintType):
			a.Scheduled = protowire.DecodeBool(f.u)
		case f.is(6, protowire.BytesType):
			a.User, err = parseUser(f.raw)
		case f.is(7, protowire.BytesType):
			a.CreatedAt, err = parseTimestamp(f.raw)
		case f.is(8, protowire.BytesType):
			a.UpdatedAt, err = parseTimestamp(f.raw)
		}
		return err
	})
	return a, err
}

// summary: 1 id, 2 date, 3 start_time, 4 end_time, 5 scheduled,
// 6 user (1 name, 2 email)
func appendSummary(b []byte, s *model.AppointmentSummary) []byte {
	b = appendString(b, 1, s.ID)
	b = appendDate(b, 2, s.Date)
	b = appendString(b, 3, s.StartTime.String())
	b = appendString(b, 4, s.EndTime.String())
	b = appendBool(b, 5, s.Scheduled)
	if s.User != nil {
		var owner []byte
		owner = appendString(owner, 1, s.User.Name)
		owner = appendString(owner, 2, s.User.Email)
		b = appendMessage(b, 6, owner)
	}
	return b
}

func parseSummary(raw []byte) (model.AppointmentSummary, error) {
	var s model.AppointmentSummary
	err := walk(raw, func(f field) error {
		var err error
		switch {
		case f.is(1, protowire.BytesType):
			s.ID = f.str()
		case f.is(2, protowire.BytesType):
			s.Date, err = model.ParseDate(f.str())
		case f.is(3, protowire.BytesType):
			s.StartTime, err = model.ParseClock(f.str())
		case f.is(4, protowire.BytesType):
			s.EndTime, err = model.ParseClock(f.str())
		case f.is(5, protowire.VarintType):
			s.Scheduled = protowire.DecodeBool(f.u)
		case f.is(6, protowire.BytesType):
			o := &model.Owner{}
			err = walk(f.raw, func(f field) error {
				switch {
				case f.is(1, protowire.BytesType):
					o.Name = f.str()
				case f.is(2, protowire.BytesType):
					o.Email = f.str()
				}
				return nil
			})
			s.User = o
		}
		return err
	})
	return s, err
}

// ----- requests and responses -----

func (m *Empty) Marshal() ([]byte, error) { return nil, nil }

func (m *Empty) Unmarshal(b []byte) error {
	return walk(b, func(field) error { return nil })
}

func (m *SignupRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Name)
	b = appendString(b, 2, m.Email)
	b = appendString(b, 3, m.Password)
	return appendString(b, 4, string(m.Role)), nil
}

// 1 name, 2 email, 3 password, 4 role
func (m *SignupRequest) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Name = f.str()
		case f.is(2, protowire.BytesType):
			m.Email = f.str()
		case f.is(3, protowire.BytesType):
			m.Password = f.str()
		case f.is(4, protowire.BytesType):
			m.Role = model.Role(f.str())
		}
		return nil
	})
}

func (m *SignupResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.UserID)
	b = appendString(b, 2, m.Email)
	b = appendString(b, 3, string(m.Role))
	return appendString(b, 4, m.Message), nil
}

// 1 user_id, 2 email, 3 role, 4 message
func (m *SignupResponse) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.UserID = f.str()
		case f.is(2, protowire.BytesType):
			m.Email = f.str()
		case f.is(3, protowire.BytesType):
			m.Role = model.Role(f.str())
		case f.is(4, protowire.BytesType):
			m.Message = f.str()
		}
		return nil
	})
}

func (m *LoginRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Email)
	return appendString(b, 2, m.Password), nil
}

// 1 email, 2 password
func (m *LoginRequest) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Email = f.str()
		case f.is(2, protowire.BytesType):
			m.Password = f.str()
		}
		return nil
	})
}

func (m *LoginResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.Token)
	b = appendString(b, 2, m.Email)
	return appendString(b, 3, string(m.Role)), nil
}

// 1 token, 2 email, 3 role
func (m *LoginResponse) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.Token = f.str()
		case f.is(2, protowire.BytesType):
			m.Email = f.str()
		case f.is(3, protowire.BytesType):
			m.Role = model.Role(f.str())
		}
		return nil
	})
}

func (m *BookRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.AppointmentID)
	b = appendString(b, 2, m.Email)
	return appendString(b, 3, m.Name), nil
}

// 1 appointment_id, 2 email, 3 name
func (m *BookRequest) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.AppointmentID = f.str()
		case f.is(2, protowire.BytesType):
			m.Email = f.str()
		case f.is(3, protowire.BytesType):
			m.Name = f.str()
		}
		return nil
	})
}

func (m *UserAppointmentsRequest) Marshal() ([]byte, error) {
	return appendString(nil, 1, m.Email), nil
}

// 1 email
func (m *UserAppointmentsRequest) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.is(1, protowire.BytesType) {
			m.Email = f.str()
		}
		return nil
	})
}

func (m *AppointmentID) Marshal() ([]byte, error) {
	return appendString(nil, 1, m.ID), nil
}

// 1 id
func (m *AppointmentID) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.is(1, protowire.BytesType) {
			m.ID = f.str()
		}
		return nil
	})
}

func (m *SlotRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.ID)
	b = appendString(b, 2, m.Date)
	b = appendString(b, 3, m.StartTime)
	return appendString(b, 4, m.EndTime), nil
}

// 1 id, 2 date, 3 start_time, 4 end_time
func (m *SlotRequest) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		switch {
		case f.is(1, protowire.BytesType):
			m.ID = f.str()
		case f.is(2, protowire.BytesType):
			m.Date = f.str()
		case f.is(3, protowire.BytesType):
			m.StartTime = f.str()
		case f.is(4, protowire.BytesType):
			m.EndTime = f.str()
		}
		return nil
	})
}

func (m *StatusResponse) Marshal() ([]byte, error) {
	return appendString(nil, 1, m.Message), nil
}

// 1 message
func (m *StatusResponse) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if f.is(1, protowire.BytesType) {
			m.Message = f.str()
		}
		return nil
	})
}

func (m *AppointmentResponse) Marshal() ([]byte, error) {
	if m.Appointment == nil {
		return nil, nil
	}
	return appendMessage(nil, 1, appendAppointment(nil, m.Appointment)), nil
}

// 1 appointment
func (m *AppointmentResponse) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if !f.is(1, protowire.BytesType) {
			return nil
		}
		a, err := parseAppointment(f.raw)
		if err != nil {
			return fmt.Errorf("appointment: %w", err)
		}
		m.Appointment = &a
		return nil
	})
}

func (m *AppointmentList) Marshal() ([]byte, error) {
	var b []byte
	for i := range m.Appointments {
		b = appendMessage(b, 1, appendAppointment(nil, &m.Appointments[i]))
	}
	return b, nil
}

// repeated 1 appointment
func (m *AppointmentList) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if !f.is(1, protowire.BytesType) {
			return nil
		}
		a, err := parseAppointment(f.raw)
		if err != nil {
			return fmt.Errorf("appointment: %w", err)
		}
		m.Appointments = append(m.Appointments, a)
		return nil
	})
}

func (m *SummaryList) Marshal() ([]byte, error) {
	var b []byte
	for i := range m.Appointments {
		b = appendMessage(b, 1, appendSummary(nil, &m.Appointments[i]))
	}
	return b, nil
}

// repeated 1 summary
func (m *SummaryList) Unmarshal(b []byte) error {
	return walk(b, func(f field) error {
		if !f.is(1, protowire.BytesType) {
			return nil
		}
		s, err := parseSummary(f.raw)
		if err != nil {
			return fmt.Errorf("summary: %w", err)
		}
		m.Appointments = append(m.Appointments, s)
		return nil
	})
}
