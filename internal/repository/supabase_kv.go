package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pdf-slide-synth/internal/domain"
)

const supabaseJobListsTable = "job_lists"

// SupabaseKVStore stores values as rows of the job_lists table.
type SupabaseKVStore struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSupabaseKVStore(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseKVStore {
	return &SupabaseKVStore{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

type supabaseKVRow struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func (s *SupabaseKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	client := s.supabaseClient.DB()
	if client == nil {
		return nil, fmt.Errorf("supabase client not initialized")
	}

	data, _, err := client.From(supabaseJobListsTable).
		Select("*", "", false).
		Eq("key", key).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	var rows []supabaseKVRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrKeyNotFound
	}
	return []byte(rows[0].Value), nil
}

func (s *SupabaseKVStore) Set(ctx context.Context, key string, value []byte) error {
	client := s.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	row := supabaseKVRow{Key: key, Value: string(value), UpdatedAt: time.Now().UTC().Format(time.RFC3339)}
	if _, _, err := client.From(supabaseJobListsTable).
		Upsert(row, "key", "", "").
		Execute(); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", key, err)
	}
	s.logger.Debug("Job list stored", "key", key, "bytes", len(value))
	return nil
}

func (s *SupabaseKVStore) Delete(ctx context.Context, key string) error {
	client := s.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	if _, _, err := client.From(supabaseJobListsTable).
		Delete("", "").
		Eq("key", key).
		Execute(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseKVStore) Close() error {
	return nil
}
