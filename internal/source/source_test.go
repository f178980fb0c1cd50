package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryFetch(t *testing.T) {
	mem := NewMemory().
		Add("rooms", Document{ID: "101", Data: map[string]any{"capacity": int64(3)}}).
		Add("rooms", Document{ID: "102"})

	docs, err := mem.Fetch(context.Background(), "rooms")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "101", docs[0].ID)
	assert.Equal(t, "102", docs[1].ID)

	empty, err := mem.Fetch(context.Background(), "notices")
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Equal(t, []string{"rooms"}, mem.Collections())
}

func TestMemoryFetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemory().Fetch(ctx, "rooms")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenJSONDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "payments.json", `{
		"p2": {"studentEmail": "b@x.com", "amount": 250.5},
		"p1": {"studentEmail": "a@x.com", "amount": 500, "tags": [1, "x"], "meta": {"n": 2}}
	}`)
	writeFile(t, dir, "notes.txt", "ignored")

	mem, err := OpenJSONDir(dir)
	require.NoError(t, err)

	docs, err := mem.Fetch(context.Background(), "payments")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "p1", docs[0].ID)
	assert.Equal(t, int64(500), docs[0].Data["amount"])
	assert.Equal(t, []any{int64(1), "x"}, docs[0].Data["tags"])
	assert.Equal(t, map[string]any{"n": int64(2)}, docs[0].Data["meta"])
	assert.Equal(t, "p2", docs[1].ID)
	assert.Equal(t, 250.5, docs[1].Data["amount"])

	assert.Equal(t, []string{"payments"}, mem.Collections())
}

func TestOpenJSONDirBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rooms.json", `["not", "an", "object"]`)

	_, err := OpenJSONDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection rooms")
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "couchdb"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestFromBSON(t *testing.T) {
	oid := primitive.NewObjectID()
	when := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	doc := fromBSON(bson.M{
		"_id":     oid,
		"count":   int32(4),
		"created": primitive.NewDateTimeFromTime(when),
		"items":   primitive.A{"a", int32(2)},
		"nested":  bson.M{"at": primitive.NewDateTimeFromTime(when)},
		"ordered": bson.D{{Key: "k", Value: "v"}},
	})

	assert.Equal(t, oid.Hex(), doc.ID)
	assert.NotContains(t, doc.Data, "_id")
	assert.Equal(t, int64(4), doc.Data["count"])
	assert.Equal(t, when, doc.Data["created"])
	assert.Equal(t, []any{"a", int64(2)}, doc.Data["items"])
	assert.Equal(t, map[string]any{"at": when}, doc.Data["nested"])
	assert.Equal(t, map[string]any{"k": "v"}, doc.Data["ordered"])
}

func TestFromBSONStringID(t *testing.T) {
	doc := fromBSON(bson.M{"_id": "student@x.com", "room": "101"})
	assert.Equal(t, "student@x.com", doc.ID)
	assert.Equal(t, "101", doc.Data["room"])
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}
