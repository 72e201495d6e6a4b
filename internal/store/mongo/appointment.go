package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/store"
)

// Dates are kept as YYYY-MM-DD strings so equality and sort order match
// the calendar.
type appointmentDoc struct {
	ID        string    `bson:"_id"`
	Date      string    `bson:"date"`
	StartTime int       `bson:"start_time"`
	EndTime   int       `bson:"end_time"`
	Scheduled bool      `bson:"scheduled"`
	UserID    *string   `bson:"user_id"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d *appointmentDoc) model(owner *model.User) (*model.Appointment, error) {
	date, err := model.ParseDate(d.Date)
	if err != nil {
		return nil, err
	}
	return &model.Appointment{
		ID:        d.ID,
		Date:      date,
		StartTime: model.Clock(d.StartTime),
		EndTime:   model.Clock(d.EndTime),
		Scheduled: d.Scheduled,
		User:      owner,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := appointmentDoc{
		ID:        a.ID,
		Date:      a.Date.String(),
		StartTime: int(a.StartTime),
		EndTime:   int(a.EndTime),
		Scheduled: a.Scheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if a.User != nil {
		doc.UserID = &a.User.ID
	}
	if _, err := s.appointments.InsertOne(ctx, doc); err != nil {
		return mapErr(err)
	}
	a.CreatedAt, a.UpdatedAt = now, now
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	var d appointmentDoc
	if err := s.appointments.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	var owner *model.User
	if d.UserID != nil {
		u, err := s.UserByID(ctx, *d.UserID)
		if err != nil {
			return nil, err
		}
		owner = u
	}
	return d.model(owner)
}

func (s *Store) ListAppointments(ctx context.Context, f store.Filter) ([]model.Appointment, error) {
	filter := bson.M{}
	if f.Scheduled != nil {
		filter["scheduled"] = *f.Scheduled
	}
	if f.Date != nil {
		filter["date"] = f.Date.String()
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "start_time", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := s.appointments.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []appointmentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	var ids []string
	for _, d := range docs {
		if d.UserID != nil {
			ids = append(ids, *d.UserID)
		}
	}
	owners, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.Appointment, 0, len(docs))
	for i := range docs {
		var owner *model.User
		if docs[i].UserID != nil {
			owner = owners[*docs[i].UserID]
		}
		a, err := docs[i].model(owner)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

// conditional applies update to id only while scheduled == want.
func (s *Store) conditional(ctx context.Context, id string, want bool, set bson.M) error {
	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.appointments.UpdateOne(ctx,
		bson.M{"_id": id, "scheduled": want},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := s.appointments.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return store.ErrStateChanged
}

func (s *Store) BookAppointment(ctx context.Context, id, userID string) error {
	return s.conditional(ctx, id, false, bson.M{"scheduled": true, "user_id": userID})
}

func (s *Store) CancelAppointment(ctx context.Context, id string) error {
	return s.conditional(ctx, id, true, bson.M{"scheduled": false, "user_id": nil})
}

func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	return s.conditional(ctx, a.ID, false, bson.M{
		"date":       a.Date.String(),
		"start_time": int(a.StartTime),
		"end_time":   int(a.EndTime),
	})
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	res, err := s.appointments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
