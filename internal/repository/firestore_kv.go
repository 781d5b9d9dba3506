package repository

import (
	"context"
	"fmt"
	"time"

	"pdf-slide-synth/internal/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const firestoreJobListsCollection = "job_lists"

// FirestoreKVStore stores one document per key with a single value field.
type FirestoreKVStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreClient creates a client for projectID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

func NewFirestoreKVStore(client *firestore.Client) *FirestoreKVStore {
	return &FirestoreKVStore{client: client, collection: firestoreJobListsCollection}
}

type firestoreKVDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (s *FirestoreKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	snap, err := s.client.Collection(s.collection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get: %w", err)
	}
	var doc firestoreKVDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore decode: %w", err)
	}
	return []byte(doc.Value), nil
}

func (s *FirestoreKVStore) Set(ctx context.Context, key string, value []byte) error {
	doc := firestoreKVDoc{Value: string(value), UpdatedAt: time.Now().UTC()}
	if _, err := s.client.Collection(s.collection).Doc(key).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore set: %w", err)
	}
	return nil
}

func (s *FirestoreKVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.client.Collection(s.collection).Doc(key).Delete(ctx); err != nil {
		return fmt.Errorf("firestore delete: %w", err)
	}
	return nil
}

func (s *FirestoreKVStore) Close() error {
	return s.client.Close()
}
