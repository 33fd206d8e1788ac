package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/huertacl/catalog-service/internal/api/dto"
	"github.com/huertacl/catalog-service/internal/service"
)

// CatalogHandler exposes category and product endpoints.
type CatalogHandler struct {
	service *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: catalogService}
}

// ListCategories GET /categorias.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponses(categories)})
}

// GetCategory GET /categorias/:id.
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	category, err := h.service.GetCategory(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// CreateCategory POST /categorias.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	category, err := h.service.CreateCategory(c.UserContext(), actor(c), categoryInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// UpdateCategory PUT /categorias/:id.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	category, err := h.service.UpdateCategory(c.UserContext(), actor(c), id, categoryInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCategoryResponse(category)})
}

// DeleteCategory DELETE /categorias/:id.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteCategory(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListProducts GET /productos.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponses(products)})
}

// GetProduct GET /productos/:id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// CreateProduct POST /productos.
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), actor(c), productInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// UpdateProduct PUT /productos/:id.
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), actor(c), id, productInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// DeleteProduct DELETE /productos/:id.
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.UserContext(), actor(c), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func categoryInput(req dto.CategoryRequest) service.CategoryInput {
	return service.CategoryInput{Name: req.Name, Description: req.Description}
}

// productInput assumes req passed validation, so the required pointers are set.
func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:            req.Name,
		Price:           *req.Price,
		CategoryID:      *req.CategoryID,
		Stock:           *req.Stock,
		Image:           req.Image,
		Description:     req.Description,
		Origin:          req.Origin,
		Sustainability:  req.Sustainability,
		Recipe:          req.Recipe,
		Recommendations: req.Recommendations,
	}
}
