package domain

import (
	"context"
	"time"
)

const (
	LINK_CACHE_KEY_PREFIX = "link:"
	USED_CODES_CACHE_KEY  = "codes:used"
)

type Link struct {
	ID          int64
	Code        string
	Destination string
	CreatorIP   string
	APIKeyID    int64
	ClickCount  int64
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsExpired treats a link without expiry as permanent.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

type CreateLinkParams struct {
	URL           string
	CustomCode    string
	ExpiresInDays *int
	CreatorIP     string
	APIKeyID      int64
	CaptchaToken  string
}

type CodeUnavailableReason string

const (
	CodeReserved CodeUnavailableReason = "reserved"
	CodeTaken    CodeUnavailableReason = "taken"
	CodeInvalid  CodeUnavailableReason = "invalid"
)

type CodeAvailability struct {
	Code      string
	Available bool
	Reason    CodeUnavailableReason
}

type LinkStats struct {
	Code        string
	ShortURL    string
	Destination string
	ClickCount  int64
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	IsActive    bool
}

type LinkPreview struct {
	Code        string
	Destination string
	IsSafe      bool
	Warning     string
}

type MaintenanceResult struct {
	ExpiredCodes int
	SyncedCodes  int
	DeletedLinks int
}

type LinkRepo interface {
	Create(ctx context.Context, link *Link) error
	GetByCode(ctx context.Context, code string) (*Link, error)
	ExistsCode(ctx context.Context, code string) (bool, error)
	Delete(ctx context.Context, code string) error
	GetExpiredCodes(ctx context.Context, now time.Time) ([]string, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	GetAllCodes(ctx context.Context) ([]string, error)
	IncrClickCounts(ctx context.Context, counts map[string]int64) error
	Ping(ctx context.Context) error
}

type LinkCacheRepo interface {
	GetDestination(ctx context.Context, code string) (destination string, exists bool, err error)
	SetDestination(ctx context.Context, code, destination string, ttl time.Duration) error
	DeleteDestination(ctx context.Context, codes ...string) error
	AddCode(ctx context.Context, code string) error
	CodeExists(ctx context.Context, code string) (bool, error)
	RemoveCodes(ctx context.Context, codes ...string) error
	ReplaceCodes(ctx context.Context, codes []string) error
	Ping(ctx context.Context) error
}

type LinkUseCase interface {
	Create(ctx context.Context, params *CreateLinkParams) (*Link, error)
	CheckCode(ctx context.Context, code string) (*CodeAvailability, error)
	GetStats(ctx context.Context, code string) (*LinkStats, error)
	Preview(ctx context.Context, code string) (*LinkPreview, error)
	Resolve(ctx context.Context, code string) (string, error)
	Delete(ctx context.Context, code string) error
	ShortURL(code string) string

	SyncCodes(ctx context.Context) (int, error)
	RunMaintenance(ctx context.Context) (*MaintenanceResult, error)
}
