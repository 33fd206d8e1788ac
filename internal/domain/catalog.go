package domain

import "time"

// Category groups products in the catalog.
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is a sellable catalog item.
type Product struct {
	ID              int64
	Name            string
	Price           float64
	Category        Category
	Stock           int
	Image           string
	Description     string
	Origin          string
	Sustainability  string
	Recipe          string
	Recommendations string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
