package variant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// GormRepository 把品种存放在关系型数据库中 (SQLite 或 PostgreSQL)
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate 负责自动迁移品种表结构
func (r *GormRepository) Migrate() error {
	if err := r.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("无法迁移coffee_variants表: %w", err)
	}
	fmt.Println("Variant数据库表迁移成功。")
	return nil
}

func (r *GormRepository) Create(ctx context.Context, name string) error {
	err := r.db.WithContext(ctx).Create(&Record{Name: name}).Error
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicateVariant
		}
		return fmt.Errorf("无法创建品种 %q: %w", name, err)
	}
	return nil
}

func (r *GormRepository) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Record{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("无法查询品种 %q: %w", name, err)
	}
	return count > 0, nil
}

func (r *GormRepository) List(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&Record{}).Order("id asc").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取品种列表: %w", err)
	}
	return names, nil
}

// IsUniqueViolation 判断一个数据库错误是否来自唯一约束。
// gorm 开启 TranslateError 后会返回 ErrDuplicatedKey；未翻译的错误按驱动各自的格式识别。
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ Repository = (*GormRepository)(nil)
