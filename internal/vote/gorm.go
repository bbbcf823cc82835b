package vote

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/coffee-vote-backend/internal/variant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository 把投票存放在关系型数据库中
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate 负责自动迁移投票表结构，必须在品种表迁移之后调用
func (r *GormRepository) Migrate() error {
	if err := r.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("无法迁移votes表: %w", err)
	}
	fmt.Println("Vote数据库表迁移成功。")
	return nil
}

// Append 在一个事务中查找品种并写入投票。
// 查重依赖 (variant_id, voter_key) 唯一索引，由数据库保证并发下只有一条能写入成功。
func (r *GormRepository) Append(ctx context.Context, v Vote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner variant.Record
		if err := tx.Where("name = ?", v.Variant).First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVariantNotFound
			}
			return fmt.Errorf("无法查询品种 %q: %w", v.Variant, err)
		}

		record := Record{
			VariantID: owner.ID,
			VoterKey:  VoterKey(v.Name),
			Name:      v.Name,
			Vote:      v.Choice,
			CreatedAt: v.CreatedAt,
		}
		if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			if variant.IsUniqueViolation(err) {
				return ErrDuplicateVote
			}
			return fmt.Errorf("无法写入投票记录: %w", err)
		}
		return nil
	})
}

// List 按写入顺序返回所有投票
func (r *GormRepository) List(ctx context.Context) ([]Vote, error) {
	var records []Record
	err := r.db.WithContext(ctx).Preload("Variant").Order("id asc").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取投票记录: %w", err)
	}

	votes := make([]Vote, 0, len(records))
	for _, record := range records {
		votes = append(votes, Vote{
			Variant:   record.Variant.Name,
			Name:      record.Name,
			Choice:    record.Vote,
			CreatedAt: record.CreatedAt,
		})
	}
	return votes, nil
}

var _ Repository = (*GormRepository)(nil)
