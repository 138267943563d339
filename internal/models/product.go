// ABOUTME: Product is a catalog entry from the store's product feed
// ABOUTME: Its formatted text is the label stored next to its description embedding
package models

import "fmt"

// Product represents a single catalog item
type Product struct {
	ID          int     `json:"id" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"required"`
	Image       string  `json:"image" validate:"required,http_url"`
}

// String returns the full formatted product text returned to the agent on a match
func (p Product) String() string {
	return fmt.Sprintf("id=%d title=%q price=%.2f description=%q category=%q image=%q",
		p.ID, p.Title, p.Price, p.Description, p.Category, p.Image)
}
