package models

// ShoppingItemMaxLen bounds the label of a shopping list entry.
const ShoppingItemMaxLen = 200

// ShoppingItem is an entry on the shared shopping list.
type ShoppingItem struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Text    string `gorm:"size:200;not null" json:"text"`
	Checked bool   `gorm:"not null;default:false" json:"checked"`
}

func (ShoppingItem) TableName() string { return "shopping_item" }
