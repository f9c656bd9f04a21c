package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/libshop/internal/domain/basket"
	apperrors "github.com/xiebiao/libshop/pkg/errors"
)

// basketRepository 购物车仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/basket/repository.go定义的接口
// 2. (user_id, book_id)的唯一索引在BasketItemModel上定义,
//    并发插入同一本书时数据库报Duplicate entry,由调用方在事务内处理
// 3. 增减数量的读改写路径必须走FindItemForUpdate加行锁
type basketRepository struct {
	db *gorm.DB
}

// NewBasketRepository 创建购物车仓储
func NewBasketRepository(db *gorm.DB) basket.Repository {
	return &basketRepository{db: db}
}

// FindByUserID 查询用户的全部购物车条目(按创建时间升序)
func (r *basketRepository) FindByUserID(ctx context.Context, userID uint) ([]*basket.Item, error) {
	var models []BasketItemModel
	db := r.getDB(ctx)
	err := db.Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}

	items := make([]*basket.Item, len(models))
	for i, model := range models {
		items[i] = toBasketItemEntity(&model)
	}
	return items, nil
}

// FindItem 按(用户,图书)查询单个条目
func (r *basketRepository) FindItem(ctx context.Context, userID, bookID uint) (*basket.Item, error) {
	var model BasketItemModel
	db := r.getDB(ctx)
	err := db.Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, basket.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车条目失败")
	}
	return toBasketItemEntity(&model), nil
}

// FindItemForUpdate 悲观锁查询单个条目
// SELECT FOR UPDATE锁定该行直到事务结束,并发的增减数量在这里排队,
// 先读数量再写回的窗口期不会被其他请求覆盖
func (r *basketRepository) FindItemForUpdate(ctx context.Context, userID, bookID uint) (*basket.Item, error) {
	var model BasketItemModel
	db := r.getDB(ctx)
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, basket.ErrItemNotFound
		}
		return nil, apperrors.Wrap(err, "锁定购物车条目失败")
	}
	return toBasketItemEntity(&model), nil
}

// Create 插入新条目
func (r *basketRepository) Create(ctx context.Context, item *basket.Item) error {
	model := &BasketItemModel{
		UserID:   item.UserID,
		BookID:   item.BookID,
		Quantity: item.Quantity,
	}

	db := r.getDB(ctx)
	if err := db.Create(model).Error; err != nil {
		if isDuplicateError(err) {
			// 并发下另一个请求已插入同(用户,图书)的条目
			return apperrors.Wrap(err, "购物车条目已存在")
		}
		return apperrors.Wrap(err, "创建购物车条目失败")
	}

	item.ID = model.ID
	item.CreatedAt = model.CreatedAt
	item.UpdatedAt = model.UpdatedAt
	return nil
}

// AddOrUpdateQuantity 原子增减数量
// 三条语句在一个事务内执行,单次调用全有或全无:
// 1. UPDATE quantity = quantity + delta
// 2. 有行被更新且结果<=0时删除该行
// 3. 没有行被更新时插入新行(quantity = delta)
func (r *basketRepository) AddOrUpdateQuantity(ctx context.Context, userID, bookID uint, delta int) error {
	db := r.getDB(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BasketItemModel{}).
			Where("user_id = ? AND book_id = ?", userID, bookID).
			Update("quantity", gorm.Expr("quantity + ?", delta))
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "更新购物车数量失败")
		}

		if result.RowsAffected == 0 {
			model := &BasketItemModel{UserID: userID, BookID: bookID, Quantity: delta}
			if err := tx.Create(model).Error; err != nil {
				if isDuplicateError(err) {
					return apperrors.Wrap(err, "购物车条目已存在")
				}
				return apperrors.Wrap(err, "创建购物车条目失败")
			}
			return nil
		}

		// 减到0及以下的行整条删除
		err := tx.Where("user_id = ? AND book_id = ? AND quantity <= 0", userID, bookID).
			Delete(&BasketItemModel{}).Error
		if err != nil {
			return apperrors.Wrap(err, "删除购物车条目失败")
		}
		return nil
	})
}

// UpdateQuantity 更新条目数量
func (r *basketRepository) UpdateQuantity(ctx context.Context, userID, bookID uint, quantity int) error {
	db := r.getDB(ctx)
	result := db.Model(&BasketItemModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Update("quantity", quantity)

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新购物车数量失败")
	}
	if result.RowsAffected == 0 {
		return basket.ErrItemNotFound
	}
	return nil
}

// DeleteItem 删除单个条目(幂等,不存在时静默成功)
// 通过RowsAffected报告是否真的删掉了一行
func (r *basketRepository) DeleteItem(ctx context.Context, userID, bookID uint) (bool, error) {
	db := r.getDB(ctx)
	result := db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&BasketItemModel{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, "删除购物车条目失败")
	}
	return result.RowsAffected > 0, nil
}

// DeleteAllByUserID 清空用户购物车,返回删除的行数
func (r *basketRepository) DeleteAllByUserID(ctx context.Context, userID uint) (int64, error) {
	db := r.getDB(ctx)
	result := db.Where("user_id = ?", userID).
		Delete(&BasketItemModel{})
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, "清空购物车失败")
	}
	return result.RowsAffected, nil
}

// toBasketItemEntity GORM模型 → 领域实体
func toBasketItemEntity(model *BasketItemModel) *basket.Item {
	return &basket.Item{
		ID:        model.ID,
		UserID:    model.UserID,
		BookID:    model.BookID,
		Quantity:  model.Quantity,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// getDB 从context获取事务DB,如果没有则使用默认DB
func (r *basketRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
