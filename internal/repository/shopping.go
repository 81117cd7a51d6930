package repository

import (
	"context"
	"errors"

	"cookfeed/internal/models"

	"gorm.io/gorm"
)

// ShoppingRepository persists the shared shopping list.
type ShoppingRepository interface {
	List(ctx context.Context) ([]models.ShoppingItem, error)
	Create(ctx context.Context, item *models.ShoppingItem) error
	Toggle(ctx context.Context, id uint) (*models.ShoppingItem, error)
	Delete(ctx context.Context, id uint) error
}

type shoppingRepository struct {
	db *gorm.DB
}

func NewShoppingRepository(db *gorm.DB) ShoppingRepository {
	return &shoppingRepository{db: db}
}

// List returns items in insertion order.
func (r *shoppingRepository) List(ctx context.Context) ([]models.ShoppingItem, error) {
	items := []models.ShoppingItem{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *shoppingRepository) Create(ctx context.Context, item *models.ShoppingItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Toggle flips checked with NOT checked so concurrent toggles never lose an update.
func (r *shoppingRepository) Toggle(ctx context.Context, id uint) (*models.ShoppingItem, error) {
	var item models.ShoppingItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ShoppingItem{}).
			Where("id = ?", id).
			UpdateColumn("checked", gorm.Expr("NOT checked"))
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Item", id)
		}
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Item", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *shoppingRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.ShoppingItem{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Item", id)
	}
	return nil
}
