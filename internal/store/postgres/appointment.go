package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/store"
)

const selectAppointment = `SELECT a.id, a.date, a.start_time, a.end_time, a.scheduled,
	       a.created_at, a.updated_at,
	       u.id, u.email, u.name, u.role
	FROM appointments a
	LEFT JOIN users u ON u.id = a.user_id`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var (
		a                      model.Appointment
		date                   time.Time
		start, end             pgtype.Time
		uid, email, name, role *string
	)
	err := row.Scan(&a.ID, &date, &start, &end, &a.Scheduled,
		&a.CreatedAt, &a.UpdatedAt,
		&uid, &email, &name, &role)
	if err != nil {
		return nil, err
	}
	a.Date = model.DateOf(date)
	a.StartTime = fromTime(start)
	a.EndTime = fromTime(end)
	if uid != nil {
		a.User = &model.User{ID: *uid, Email: *email, Name: *name, Role: model.Role(*role)}
	}
	return &a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	var userID *string
	if a.User != nil {
		userID = &a.User.ID
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, date, start_time, end_time, scheduled, user_id)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at, updated_at`,
		a.ID, a.Date.Time(), toTime(a.StartTime), toTime(a.EndTime), a.Scheduled, userID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return mapErr(err)
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a, err := scanAppointment(s.pool.QueryRow(ctx, selectAppointment+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *Store) ListAppointments(ctx context.Context, f store.Filter) ([]model.Appointment, error) {
	var (
		conds []string
		args  []any
	)
	if f.Scheduled != nil {
		args = append(args, *f.Scheduled)
		conds = append(conds, fmt.Sprintf("a.scheduled = $%d", len(args)))
	}
	if f.Date != nil {
		args = append(args, f.Date.Time())
		conds = append(conds, fmt.Sprintf("a.date = $%d", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		conds = append(conds, fmt.Sprintf("a.user_id = $%d", len(args)))
	}

	q := selectAppointment
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY a.date, a.start_time, a.id`

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// conditional runs a guarded UPDATE and tells a missing row apart from a
// row whose scheduled flag did not match.
func (s *Store) conditional(ctx context.Context, id, q string, args ...any) error {
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return store.ErrNotFound
	}
	return store.ErrStateChanged
}

func (s *Store) BookAppointment(ctx context.Context, id, userID string) error {
	return s.conditional(ctx, id,
		`UPDATE appointments SET scheduled = true, user_id = $2, updated_at = NOW()
		 WHERE id = $1 AND scheduled = false`, id, userID)
}

func (s *Store) CancelAppointment(ctx context.Context, id string) error {
	return s.conditional(ctx, id,
		`UPDATE appointments SET scheduled = false, user_id = NULL, updated_at = NOW()
		 WHERE id = $1 AND scheduled = true`, id)
}

func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.conditional(ctx, a.ID,
		`UPDATE appointments SET date = $2, start_time = $3, end_time = $4, updated_at = NOW()
		 WHERE id = $1 AND scheduled = false`,
		a.ID, a.Date.Time(), toTime(a.StartTime), toTime(a.EndTime))
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
