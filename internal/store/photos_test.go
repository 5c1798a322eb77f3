package store

import (
	"context"
	"testing"

	"github.com/solehq/soletrack/internal/db"
)

func TestRecordPhotoRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	record := mustCreate(t, database, nil)

	data, mime, err := GetRecordPhoto(ctx, database, record.ID)
	if err != nil {
		t.Fatalf("GetRecordPhoto: %v", err)
	}
	if data != nil || mime != "" {
		t.Error("expected no photo on a fresh record")
	}

	ok, err := SetRecordPhoto(ctx, database, record.ID, []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("SetRecordPhoto: %v", err)
	}
	if !ok {
		t.Fatal("expected photo update to hit the record")
	}

	data, mime, err = GetRecordPhoto(ctx, database, record.ID)
	if err != nil {
		t.Fatalf("GetRecordPhoto: %v", err)
	}
	if len(data) != 3 || mime != "image/jpeg" {
		t.Errorf("unexpected photo: %d bytes, mime %q", len(data), mime)
	}

	ok, err = SetRecordPhoto(ctx, database, "no-such-id", []byte{1}, "image/jpeg")
	if err != nil {
		t.Fatalf("SetRecordPhoto missing: %v", err)
	}
	if ok {
		t.Error("expected false for missing record")
	}
}
