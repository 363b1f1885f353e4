package meta

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

var (
	ErrObjectNotFound = errors.New("object not found in catalog")
)

// Repository 封装所有对目录库的操作
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Upsert 记录一次 store：不存在则插入，存在则覆盖类型和大小
func (r *Repository) Upsert(ctx context.Context, uid types.UID, typ types.ObjectType, size uint64) error {
	row := ObjectModel{
		UID:  uid.String(),
		Type: types.TypeName(typ),
		Size: int64(size),
	}
	return r.db.GetConn().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

// Remove 删除一条目录记录 (对象被 RemoveObject 之后)
func (r *Repository) Remove(ctx context.Context, uid types.UID) error {
	return r.db.GetConn().WithContext(ctx).
		Delete(&ObjectModel{}, "uid = ?", uid.String()).Error
}

// Get 查询单个对象的目录记录
func (r *Repository) Get(ctx context.Context, uid types.UID) (*ObjectModel, error) {
	var row ObjectModel
	err := r.db.GetConn().WithContext(ctx).
		Where("uid = ?", uid.String()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List 按 UID 升序返回全部目录记录；typeName 非空时按类型过滤
func (r *Repository) List(ctx context.Context, typeName string) ([]ObjectModel, error) {
	q := r.db.GetConn().WithContext(ctx).Order("uid asc")
	if typeName != "" {
		q = q.Where("type = ?", typeName)
	}
	var rows []ObjectModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count 返回目录里的对象总数
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetConn().WithContext(ctx).Model(&ObjectModel{}).Count(&n).Error
	return n, err
}

// Rebuild 清空目录并从 parcel 的遍历结果整体重建
func (r *Repository) Rebuild(ctx context.Context, rows []ObjectModel) error {
	return r.db.GetConn().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&ObjectModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
