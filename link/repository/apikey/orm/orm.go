package orm

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/domain"
	ormKit "github.com/superj80820/link-shortener/kit/orm"
	utilKit "github.com/superj80820/link-shortener/kit/util"
)

type apiKeyEntity struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement:false"`
	KeyHash    string     `gorm:"column:key_hash;type:char(64);uniqueIndex:uk_api_key_key_hash;not null"`
	Name       string     `gorm:"column:name;type:varchar(100);not null"`
	RateLimit  int        `gorm:"column:rate_limit;not null"`
	IsActive   bool       `gorm:"column:is_active;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
}

func (apiKeyEntity) TableName() string {
	return "api_key"
}

func (a *apiKeyEntity) toDomain() *domain.APIKey {
	return &domain.APIKey{
		ID:         a.ID,
		KeyHash:    a.KeyHash,
		Name:       a.Name,
		RateLimit:  a.RateLimit,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
		LastUsedAt: a.LastUsedAt,
	}
}

type apiKeyRepo struct {
	db *ormKit.DB
}

func CreateAPIKeyRepo(db *ormKit.DB) domain.APIKeyRepo {
	return &apiKeyRepo{
		db: db,
	}
}

func Migrate(db *ormKit.DB) error {
	return db.AutoMigrate(&apiKeyEntity{})
}

func (a *apiKeyRepo) Create(ctx context.Context, apiKey *domain.APIKey) error {
	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return errors.Wrap(err, "generate unique id failed")
	}

	entity := apiKeyEntity{
		ID:        uniqueIDGenerate.Generate().GetInt64(),
		KeyHash:   apiKey.KeyHash,
		Name:      apiKey.Name,
		RateLimit: apiKey.RateLimit,
		IsActive:  apiKey.IsActive,
	}
	if err := a.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if ormKit.IsDuplicatedKey(err) {
			return errors.Wrap(domain.ErrDuplicate, "create api key failed")
		}
		return errors.Wrap(err, "create api key failed")
	}

	*apiKey = *entity.toDomain()

	return nil
}

func (a *apiKeyRepo) GetByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	var entity apiKeyEntity
	if err := a.db.WithContext(ctx).Where("key_hash = ?", keyHash).First(&entity).Error; errors.Is(err, ormKit.ErrRecordNotFound) {
		return nil, errors.Wrap(domain.ErrNoData, "get api key failed")
	} else if err != nil {
		return nil, errors.Wrap(err, "get api key failed")
	}
	return entity.toDomain(), nil
}

func (a *apiKeyRepo) List(ctx context.Context) ([]*domain.APIKey, error) {
	var entities []*apiKeyEntity
	if err := a.db.WithContext(ctx).Order("created_at").Find(&entities).Error; err != nil {
		return nil, errors.Wrap(err, "list api keys failed")
	}
	apiKeys := make([]*domain.APIKey, len(entities))
	for i, entity := range entities {
		apiKeys[i] = entity.toDomain()
	}
	return apiKeys, nil
}

func (a *apiKeyRepo) Deactivate(ctx context.Context, id int64) error {
	var entity apiKeyEntity
	if err := a.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; errors.Is(err, ormKit.ErrRecordNotFound) {
		return errors.Wrap(domain.ErrNoData, "deactivate api key failed")
	} else if err != nil {
		return errors.Wrap(err, "get api key failed")
	}
	if err := a.db.WithContext(ctx).Model(&apiKeyEntity{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		return errors.Wrap(err, "deactivate api key failed")
	}
	return nil
}

func (a *apiKeyRepo) UpdateLastUsed(ctx context.Context, id int64, lastUsedAt time.Time) error {
	if err := a.db.WithContext(ctx).Model(&apiKeyEntity{}).Where("id = ?", id).Update("last_used_at", lastUsedAt.UTC()).Error; err != nil {
		return errors.Wrap(err, "update api key last used failed")
	}
	return nil
}
