package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"cookfeed/internal/models"
	"cookfeed/internal/repository"
)

type ShoppingService struct {
	items repository.ShoppingRepository
}

func NewShoppingService(items repository.ShoppingRepository) *ShoppingService {
	return &ShoppingService{items: items}
}

func (s *ShoppingService) ListItems(ctx context.Context) ([]models.ShoppingItem, error) {
	return s.items.List(ctx)
}

func (s *ShoppingService) AddItem(ctx context.Context, text string) (*models.ShoppingItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("text is required")
	}
	if utf8.RuneCountInString(text) > models.ShoppingItemMaxLen {
		return nil, models.NewValidationError("text must be at most 200 characters")
	}

	item := &models.ShoppingItem{Text: text}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ShoppingService) ToggleItem(ctx context.Context, id uint) (*models.ShoppingItem, error) {
	return s.items.Toggle(ctx, id)
}

func (s *ShoppingService) DeleteItem(ctx context.Context, id uint) error {
	return s.items.Delete(ctx, id)
}
