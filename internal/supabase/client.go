package supabase

import (
	"fmt"

	"custom-print-backend/internal/config"

	"github.com/supabase-community/supabase-go"
)

type Client struct {
	Supabase *supabase.Client
	Config   *config.Config
}

// NewClient connects with the service role key when one is configured so
// that admin reads are not limited by row level security.
func NewClient(cfg *config.Config) (*Client, error) {
	key := cfg.SupabaseServiceRoleKey
	if key == "" {
		key = cfg.SupabasePublishableKey
	}
	client, err := supabase.NewClient(cfg.SupabaseURL, key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &Client{
		Supabase: client,
		Config:   cfg,
	}, nil
}
