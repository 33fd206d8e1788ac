package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/huertacl/catalog-service/internal/cache"
	"github.com/huertacl/catalog-service/internal/domain"
	"github.com/huertacl/catalog-service/internal/events"
	"github.com/huertacl/catalog-service/internal/repository"
	apperrors "github.com/huertacl/catalog-service/pkg/util/errorutil"
)

// CatalogService manages categories and products. Public reads go through the cache;
// every mutation invalidates it.
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	cache      *cache.CatalogCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CatalogDependencies encapsulates collaborators for the catalog service.
type CatalogDependencies struct {
	CategoryRepo repository.CategoryRepository
	ProductRepo  repository.ProductRepository
	Cache        *cache.CatalogCache
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		categories: deps.CategoryRepo,
		products:   deps.ProductRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name        string
	Description string
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name            string
	Price           float64
	CategoryID      int64
	Stock           int
	Image           string
	Description     string
	Origin          string
	Sustainability  string
	Recipe          string
	Recommendations string
}

// ListCategories returns all categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if cached, ok := s.cache.Categories(ctx); ok {
		return cached, nil
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.cache.SetCategories(ctx, categories)
	return categories, nil
}

// GetCategory loads one category.
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category", id)
	}
	return category, nil
}

// CreateCategory adds a category with a unique name.
func (s *CatalogService) CreateCategory(ctx context.Context, actor *domain.User, in CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.ensureCategoryNameFree(ctx, name); err != nil {
		return nil, err
	}
	category := &domain.Category{Name: name, Description: strings.TrimSpace(in.Description)}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.categoryChanged(ctx, actor, events.ActionCreated, category)
	return category, nil
}

// UpdateCategory replaces the writable fields of category id.
func (s *CatalogService) UpdateCategory(ctx context.Context, actor *domain.User, id int64, in CategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "category", id)
	}
	name := strings.TrimSpace(in.Name)
	if name != category.Name {
		if err := s.ensureCategoryNameFree(ctx, name); err != nil {
			return nil, err
		}
	}
	category.Name = name
	category.Description = strings.TrimSpace(in.Description)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, notFoundOr(err, "category", id)
	}
	s.categoryChanged(ctx, actor, events.ActionUpdated, category)
	return category, nil
}

// DeleteCategory removes category id. Categories still holding products cannot be removed.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor *domain.User, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return notFoundOr(err, "category", id)
	}
	s.categoryChanged(ctx, actor, events.ActionDeleted, &domain.Category{ID: id})
	return nil
}

// ListProducts returns every product with its category.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if cached, ok := s.cache.Products(ctx); ok {
		return cached, nil
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.cache.SetProducts(ctx, products)
	return products, nil
}

// GetProduct loads one product.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if cached, ok := s.cache.Product(ctx, id); ok {
		return cached, nil
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	s.cache.SetProduct(ctx, product)
	return product, nil
}

// CreateProduct adds a product under an existing category.
func (s *CatalogService) CreateProduct(ctx context.Context, actor *domain.User, in ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := s.ensureProductNameFree(ctx, name); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{Category: *category}
	applyProduct(product, in)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.productChanged(ctx, actor, events.ActionCreated, product)
	return product, nil
}

// UpdateProduct replaces the writable fields of product id.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor *domain.User, id int64, in ProductInput) (*domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	if name := strings.TrimSpace(in.Name); name != product.Name {
		if err := s.ensureProductNameFree(ctx, name); err != nil {
			return nil, err
		}
	}
	if in.CategoryID != product.Category.ID {
		category, err := s.resolveCategory(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		product.Category = *category
	}

	applyProduct(product, in)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, notFoundOr(err, "product", id)
	}
	s.productChanged(ctx, actor, events.ActionUpdated, product)
	return product, nil
}

// DeleteProduct removes product id.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor *domain.User, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return notFoundOr(err, "product", id)
	}
	s.productChanged(ctx, actor, events.ActionDeleted, &domain.Product{ID: id})
	return nil
}

func (s *CatalogService) ensureCategoryNameFree(ctx context.Context, name string) error {
	exists, err := s.categories.ExistsByName(ctx, name)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if exists {
		return apperrors.NewConflict("category name already in use", map[string]any{"nombre": name})
	}
	return nil
}

func (s *CatalogService) ensureProductNameFree(ctx context.Context, name string) error {
	exists, err := s.products.ExistsByName(ctx, name)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if exists {
		return apperrors.NewConflict("product name already in use", map[string]any{"name": name})
	}
	return nil
}

func (s *CatalogService) resolveCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("category does not exist", map[string]any{"categoryId": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return category, nil
}

func (s *CatalogService) categoryChanged(ctx context.Context, actor *domain.User, action events.CatalogAction, category *domain.Category) {
	s.cache.InvalidateCategories(ctx)
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventCatalogChanged, events.ActorFor(actor),
		events.CatalogChangedPayload{Entity: events.EntityCategory, Action: action, ID: category.ID, Name: category.Name}))
}

func (s *CatalogService) productChanged(ctx context.Context, actor *domain.User, action events.CatalogAction, product *domain.Product) {
	s.cache.InvalidateProducts(ctx, product.ID)
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventCatalogChanged, events.ActorFor(actor),
		events.CatalogChangedPayload{Entity: events.EntityProduct, Action: action, ID: product.ID, Name: product.Name}))
}

func validateProduct(in ProductInput) error {
	details := map[string]any{}
	if in.Price <= 0 {
		details["price"] = "must be greater than 0"
	}
	if in.Stock < 0 {
		details["stock"] = "must not be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product", details)
	}
	return nil
}

func applyProduct(p *domain.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.Stock = in.Stock
	p.Image = strings.TrimSpace(in.Image)
	p.Description = in.Description
	p.Origin = in.Origin
	p.Sustainability = in.Sustainability
	p.Recipe = in.Recipe
	p.Recommendations = in.Recommendations
}

func notFoundOr(err error, resource string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}
