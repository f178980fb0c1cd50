package source

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// FirestoreStore reads collections from Cloud Firestore with service account
// credentials.
type FirestoreStore struct {
	client *firestore.Client
}

// OpenFirestore connects with the raw service account key JSON.
func OpenFirestore(ctx context.Context, projectID string, credentialsJSON []byte) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("connect firestore: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Fetch(ctx context.Context, collection string) ([]Document, error) {
	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		data, _ := normalizeFirestore(snap.Data()).(map[string]any)
		docs = append(docs, Document{ID: snap.Ref.ID, Data: data})
	}
	return docs, nil
}

func (s *FirestoreStore) Close(context.Context) error {
	return s.client.Close()
}

// normalizeFirestore flattens references to their IDs; timestamps already
// arrive as time.Time.
func normalizeFirestore(v any) any {
	switch t := v.(type) {
	case *firestore.DocumentRef:
		if t == nil {
			return nil
		}
		return t.ID
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeFirestore(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeFirestore(item)
		}
		return out
	}
	return v
}
