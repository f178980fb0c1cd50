// Package source reads whole collections out of the document store.
package source

import (
	"context"
	"errors"
	"sort"
)

const (
	DriverFirestore = "firestore"
	DriverMongo     = "mongo"
	DriverJSON      = "json"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown source driver")

// Document is one source record. Data holds plain Go values: string, bool,
// int64, float64, time.Time, []any, map[string]any or nil.
type Document struct {
	ID   string
	Data map[string]any
}

// Store fetches every document of a collection.
type Store interface {
	Fetch(ctx context.Context, collection string) ([]Document, error)
	Close(ctx context.Context) error
}

// Memory is a Store over documents held in process.
type Memory struct {
	collections map[string][]Document
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]Document)}
}

// Add appends documents to a collection.
func (m *Memory) Add(collection string, docs ...Document) *Memory {
	m.collections[collection] = append(m.collections[collection], docs...)
	return m
}

// Fetch returns a copy of the collection in insertion order. Unknown
// collections are empty.
func (m *Memory) Fetch(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := m.collections[collection]
	out := make([]Document, len(docs))
	copy(out, docs)
	return out, nil
}

func (m *Memory) Close(context.Context) error { return nil }

// Collections lists the collection names held, sorted.
func (m *Memory) Collections() []string {
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
