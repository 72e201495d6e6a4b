package mongo_test

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"appointment-booking-api/internal/store/mongo"
	"appointment-booking-api/internal/store/storetest"
)

func TestStore(t *testing.T) {
	_ = godotenv.Load("../../../.env")
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	st := mongo.New(client.Database("appointments_test"))
	if err := st.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	storetest.Run(t, st)
}
