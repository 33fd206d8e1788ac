package dto

import (
	"time"

	"github.com/huertacl/catalog-service/internal/domain"
)

// CategoryRequest payload for category writes.
type CategoryRequest struct {
	Name        string `json:"nombre" validate:"required,max=100"`
	Description string `json:"descripcion" validate:"max=500"`
}

// CategoryResponse is the public view of a category.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

// ProductRequest payload for product writes. The category is referenced by id.
type ProductRequest struct {
	Name            string   `json:"name" validate:"required,max=150"`
	Price           *float64 `json:"price" validate:"required,gt=0"`
	CategoryID      *int64   `json:"categoryId" validate:"required,gt=0"`
	Stock           *int     `json:"stock" validate:"required,gte=0"`
	Image           string   `json:"image" validate:"required,max=500"`
	Description     string   `json:"description"`
	Origin          string   `json:"origin"`
	Sustainability  string   `json:"sustainability"`
	Recipe          string   `json:"recipe"`
	Recommendations string   `json:"recommendations"`
}

// ProductResponse is the public view of a product with its category embedded.
type ProductResponse struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Price           float64          `json:"price"`
	Category        CategoryResponse `json:"category"`
	Stock           int              `json:"stock"`
	Image           string           `json:"image"`
	Description     string           `json:"description"`
	Origin          string           `json:"origin"`
	Sustainability  string           `json:"sustainability"`
	Recipe          string           `json:"recipe"`
	Recommendations string           `json:"recommendations"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewCategoryResponse maps a domain category.
func NewCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

// NewCategoryResponses maps a list of categories.
func NewCategoryResponses(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, NewCategoryResponse(&categories[i]))
	}
	return out
}

// NewProductResponse maps a domain product.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		Category:        NewCategoryResponse(&p.Category),
		Stock:           p.Stock,
		Image:           p.Image,
		Description:     p.Description,
		Origin:          p.Origin,
		Sustainability:  p.Sustainability,
		Recipe:          p.Recipe,
		Recommendations: p.Recommendations,
		UpdatedAt:       p.UpdatedAt,
	}
}

// NewProductResponses maps a list of products.
func NewProductResponses(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}
