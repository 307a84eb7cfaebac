package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes under router. Extra handlers,
// such as authentication middleware, run before every product route.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, middleware ...fiber.Handler) {
	productRoutes := router.Group("/products", middleware...)
	productRoutes.Post("", h.HandleCreateProduct)
	productRoutes.Get("", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleCreateProduct stores the product in the body and returns the stored record.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return badRequest(c, "Invalid request body", err)
	}

	saved, err := h.service.SaveProduct(&product)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return internalError(c, "Could not create product", err)
	}
	log.Printf("Product %d created by %s", saved.ID, middleware.ActingUser(c))
	return c.Status(fiber.StatusOK).JSON(saved)
}

// HandleGetProducts lists every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return internalError(c, "Could not retrieve products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(products)
}

// HandleGetProductByID returns one product, or 404 with an empty body.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID", err)
	}

	product, err := h.service.GetProductByID(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).Send(nil)
		}
		log.Printf("Error getting product by ID %d: %v", id, err)
		return internalError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleUpdateProduct overwrites an existing product, or returns 404 with an empty body.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID", err)
	}

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing request body for product %d: %v", id, err)
		return badRequest(c, "Invalid request body", err)
	}

	updated, err := h.service.UpdateProduct(id, &product)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).Send(nil)
		}
		log.Printf("Error updating product %d: %v", id, err)
		return internalError(c, "Could not update product", err)
	}
	log.Printf("Product %d updated by %s", id, middleware.ActingUser(c))
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product. It answers 204 whether or not the product existed.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := productID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID", err)
	}

	if err := h.service.DeleteProduct(id); err != nil {
		log.Printf("Error deleting product %d: %v", id, err)
		return internalError(c, "Could not delete product", err)
	}
	log.Printf("Product %d deleted by %s", id, middleware.ActingUser(c))
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func productID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("product ID %q is not a non-negative integer", raw)
	}
	return uint(id), nil
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func internalError(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
