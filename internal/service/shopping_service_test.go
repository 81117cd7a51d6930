package service

import (
	"context"
	"strings"
	"testing"

	"cookfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryShoppingRepo() *shoppingRepoStub {
	items := map[uint]*models.ShoppingItem{}
	var next uint
	return &shoppingRepoStub{
		listFn: func(context.Context) ([]models.ShoppingItem, error) {
			out := make([]models.ShoppingItem, 0, len(items))
			for id := uint(1); id <= next; id++ {
				if it, ok := items[id]; ok {
					out = append(out, *it)
				}
			}
			return out, nil
		},
		createFn: func(_ context.Context, it *models.ShoppingItem) error {
			next++
			it.ID = next
			cp := *it
			items[it.ID] = &cp
			return nil
		},
		toggleFn: func(_ context.Context, id uint) (*models.ShoppingItem, error) {
			it, ok := items[id]
			if !ok {
				return nil, models.NewNotFoundError("Item", id)
			}
			it.Checked = !it.Checked
			cp := *it
			return &cp, nil
		},
		deleteFn: func(_ context.Context, id uint) error {
			if _, ok := items[id]; !ok {
				return models.NewNotFoundError("Item", id)
			}
			delete(items, id)
			return nil
		},
	}
}

func TestShoppingService_Lifecycle(t *testing.T) {
	t.Parallel()
	svc := NewShoppingService(memoryShoppingRepo())
	ctx := context.Background()

	milk, err := svc.AddItem(ctx, "  milk ")
	require.NoError(t, err)
	assert.Equal(t, "milk", milk.Text)
	assert.False(t, milk.Checked)
	_, err = svc.AddItem(ctx, "eggs")
	require.NoError(t, err)

	toggled, err := svc.ToggleItem(ctx, milk.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Checked)
	toggled, err = svc.ToggleItem(ctx, milk.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Checked, "toggling twice restores the original state")

	require.NoError(t, svc.DeleteItem(ctx, milk.ID))
	items, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "eggs", items[0].Text)

	assertAppCode(t, svc.DeleteItem(ctx, milk.ID), models.CodeNotFound)
	_, err = svc.ToggleItem(ctx, 999)
	assertAppCode(t, err, models.CodeNotFound)
}

func TestShoppingService_AddItemValidation(t *testing.T) {
	t.Parallel()
	svc := NewShoppingService(memoryShoppingRepo())

	tests := []struct {
		name string
		text string
		ok   bool
	}{
		{"blank", "   ", false},
		{"empty", "", false},
		{"at limit", strings.Repeat("x", models.ShoppingItemMaxLen), true},
		{"over limit", strings.Repeat("x", models.ShoppingItemMaxLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(context.Background(), tt.text)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assertAppCode(t, err, models.CodeValidation)
		})
	}
}
