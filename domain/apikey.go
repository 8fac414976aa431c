package domain

import (
	"context"
	"time"
)

const API_KEY_PREFIX = "lks_"

type APIKey struct {
	ID         int64
	KeyHash    string
	Name       string
	RateLimit  int
	IsActive   bool
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

type APIKeyRepo interface {
	Create(ctx context.Context, apiKey *APIKey) error
	GetByHash(ctx context.Context, keyHash string) (*APIKey, error)
	List(ctx context.Context) ([]*APIKey, error)
	Deactivate(ctx context.Context, id int64) error
	UpdateLastUsed(ctx context.Context, id int64, lastUsedAt time.Time) error
}

type APIKeyUseCase interface {
	Generate(ctx context.Context, name string, rateLimit int) (plainKey string, apiKey *APIKey, err error)
	Validate(ctx context.Context, plainKey string) (*APIKey, error)
	List(ctx context.Context) ([]*APIKey, error)
	Deactivate(ctx context.Context, id int64) error
}
