package orm

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/superj80820/link-shortener/domain"
	ormKit "github.com/superj80820/link-shortener/kit/orm"
	utilKit "github.com/superj80820/link-shortener/kit/util"
)

type linkEntity struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement:false"`
	Code        string     `gorm:"column:code;type:varchar(64);uniqueIndex:uk_link_code;not null"`
	Destination string     `gorm:"column:destination;type:text;not null"`
	CreatorIP   string     `gorm:"column:creator_ip;type:varchar(45)"`
	APIKeyID    *int64     `gorm:"column:api_key_id;index:idx_link_api_key_id"`
	ClickCount  int64      `gorm:"column:click_count;not null;default:0"`
	ExpiresAt   *time.Time `gorm:"column:expires_at;index:idx_link_expires_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;index:idx_link_created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (linkEntity) TableName() string {
	return "link"
}

func (l *linkEntity) toDomain() *domain.Link {
	link := &domain.Link{
		ID:          l.ID,
		Code:        l.Code,
		Destination: l.Destination,
		CreatorIP:   l.CreatorIP,
		ClickCount:  l.ClickCount,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.APIKeyID != nil {
		link.APIKeyID = *l.APIKeyID
	}
	if l.ExpiresAt != nil {
		expiresAt := l.ExpiresAt.UTC()
		link.ExpiresAt = &expiresAt
	}
	return link
}

type linkRepo struct {
	db *ormKit.DB
}

func CreateLinkRepo(db *ormKit.DB) domain.LinkRepo {
	return &linkRepo{
		db: db,
	}
}

// Migrate creates or updates the link table for drivers without schema.sql.
func Migrate(db *ormKit.DB) error {
	return db.AutoMigrate(&linkEntity{})
}

func (l *linkRepo) Create(ctx context.Context, link *domain.Link) error {
	if link.ID == 0 {
		uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
		if err != nil {
			return errors.Wrap(err, "generate unique id failed")
		}
		link.ID = uniqueIDGenerate.Generate().GetInt64()
	}

	entity := linkEntity{
		ID:          link.ID,
		Code:        link.Code,
		Destination: link.Destination,
		CreatorIP:   link.CreatorIP,
		ClickCount:  link.ClickCount,
		CreatedAt:   link.CreatedAt,
	}
	if link.APIKeyID != 0 {
		apiKeyID := link.APIKeyID
		entity.APIKeyID = &apiKeyID
	}
	if link.ExpiresAt != nil {
		expiresAt := link.ExpiresAt.UTC()
		entity.ExpiresAt = &expiresAt
	}

	if err := l.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if ormKit.IsDuplicatedKey(err) {
			return errors.Wrap(domain.ErrDuplicate, "create link failed")
		}
		return errors.Wrap(err, "create link failed")
	}

	link.CreatedAt = entity.CreatedAt
	link.UpdatedAt = entity.UpdatedAt

	return nil
}

func (l *linkRepo) GetByCode(ctx context.Context, code string) (*domain.Link, error) {
	var entity linkEntity
	if err := l.db.WithContext(ctx).Where("code = ?", code).First(&entity).Error; errors.Is(err, ormKit.ErrRecordNotFound) {
		return nil, errors.Wrap(domain.ErrNoData, "get link failed")
	} else if err != nil {
		return nil, errors.Wrap(err, "get link failed")
	}
	return entity.toDomain(), nil
}

func (l *linkRepo) ExistsCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := l.db.WithContext(ctx).Model(&linkEntity{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "count link failed")
	}
	return count > 0, nil
}

func (l *linkRepo) Delete(ctx context.Context, code string) error {
	result := l.db.WithContext(ctx).Where("code = ?", code).Delete(&linkEntity{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "delete link failed")
	}
	if result.RowsAffected == 0 {
		return errors.Wrap(domain.ErrNoData, "delete link failed")
	}
	return nil
}

func (l *linkRepo) GetExpiredCodes(ctx context.Context, now time.Time) ([]string, error) {
	var codes []string
	if err := l.db.WithContext(ctx).
		Model(&linkEntity{}).
		Where("expires_at IS NOT NULL AND expires_at < ?", now.UTC()).
		Pluck("code", &codes).Error; err != nil {
		return nil, errors.Wrap(err, "get expired codes failed")
	}
	return codes, nil
}

func (l *linkRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := l.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", now.UTC()).
		Delete(&linkEntity{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "delete expired links failed")
	}
	return result.RowsAffected, nil
}

func (l *linkRepo) GetAllCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := l.db.WithContext(ctx).Model(&linkEntity{}).Pluck("code", &codes).Error; err != nil {
		return nil, errors.Wrap(err, "get all codes failed")
	}
	return codes, nil
}

func (l *linkRepo) IncrClickCounts(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}
	if err := l.db.WithContext(ctx).Transaction(func(tx *ormKit.TX) error {
		for code, count := range counts {
			if err := tx.Model(&linkEntity{}).
				Where("code = ?", code).
				UpdateColumn("click_count", ormKit.Expr("click_count + ?", count)).Error; err != nil {
				return errors.Wrap(err, "update click count failed")
			}
		}
		return nil
	}); err != nil {
		return errors.Wrap(err, "incr click counts failed")
	}
	return nil
}

func (l *linkRepo) Ping(ctx context.Context) error {
	return l.db.Ping(ctx)
}
