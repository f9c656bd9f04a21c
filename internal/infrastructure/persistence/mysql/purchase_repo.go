package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/libshop/internal/domain/purchase"
	apperrors "github.com/xiebiao/libshop/pkg/errors"
)

// purchaseRepository 购买记录仓储实现(MySQL)
// 流水表只有插入和查询两条路径
type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository 创建购买记录仓储
func NewPurchaseRepository(db *gorm.DB) purchase.Repository {
	return &purchaseRepository{db: db}
}

// Create 追加一条购买记录
func (r *purchaseRepository) Create(ctx context.Context, record *purchase.Record) error {
	model := toPurchaseModel(record)

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入购买记录失败")
	}

	record.ID = model.ID
	record.CreatedAt = model.CreatedAt
	return nil
}

// CreateBatch 批量追加购买记录
// 一次确认购买产生的整批记录一条INSERT写入,必须在事务内调用
func (r *purchaseRepository) CreateBatch(ctx context.Context, records []*purchase.Record) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]*PurchaseRecordModel, len(records))
	for i, record := range records {
		models[i] = toPurchaseModel(record)
	}

	db := r.getDB(ctx)
	if err := db.Create(&models).Error; err != nil {
		return apperrors.Wrap(err, "批量写入购买记录失败")
	}

	// 回填自增ID
	for i, model := range models {
		records[i].ID = model.ID
		records[i].CreatedAt = model.CreatedAt
	}
	return nil
}

// ListByUserID 分页查询用户的购买历史(按成交时间倒序)
func (r *purchaseRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*purchase.Record, int64, error) {
	var models []PurchaseRecordModel
	var total int64

	db := r.getDB(ctx)
	query := db.Model(&PurchaseRecordModel{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询购买记录总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("purchase_date DESC, id DESC").
		Limit(pageSize).Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询购买历史失败")
	}

	records := make([]*purchase.Record, len(models))
	for i, model := range models {
		records[i] = toPurchaseEntity(&model)
	}
	return records, total, nil
}

// toPurchaseModel 领域实体 → GORM模型
func toPurchaseModel(record *purchase.Record) *PurchaseRecordModel {
	return &PurchaseRecordModel{
		UserID:      record.UserID,
		BookID:      record.BookID,
		Quantity:    record.Quantity,
		UnitPrice:   record.UnitPrice,
		PurchasedAt: record.PurchasedAt,
	}
}

// toPurchaseEntity GORM模型 → 领域实体
func toPurchaseEntity(model *PurchaseRecordModel) *purchase.Record {
	return &purchase.Record{
		ID:          model.ID,
		UserID:      model.UserID,
		BookID:      model.BookID,
		Quantity:    model.Quantity,
		UnitPrice:   model.UnitPrice,
		PurchasedAt: model.PurchasedAt,
		CreatedAt:   model.CreatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *purchaseRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
