package domain

import "github.com/supabase-community/supabase-go"

// SupabaseClient backs the supabase KV store. DB is nil until Initialize
// succeeds.
type SupabaseClient interface {
	Initialize() error
	DB() *supabase.Client
}
