package handlers

import (
	"net/http"
	"strconv"

	"github.com/Marga-Ghale/ora-interior-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-interior-backend/internal/models"
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ============================================
// Product Handler
// ============================================

type ProductHandler struct {
	productService service.ProductService
}

func toProductInput(req models.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Thumbnail:   req.Thumbnail,
		Stock:       req.Stock,
	}
}

func queryDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, invalidField(key, "must be a number")
	}
	return &d, nil
}

// List - Product catalog search
// GET /api/products?q=&category=&minPrice=&maxPrice=&inStock=true&limit=
func (h *ProductHandler) List(c *gin.Context) {
	filter := repository.ProductFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		InStock:  c.Query("inStock") == "true",
	}

	var err error
	if filter.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		respondError(c, err, "")
		return
	}
	if filter.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		respondError(c, err, "")
		return
	}
	if raw := c.Query("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil {
			respondError(c, invalidField("limit", "must be an integer"), "")
			return
		}
	}

	products, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to fetch products")
		return
	}

	response := make([]models.ProductResponse, len(products))
	for i, p := range products {
		response[i] = toProductResponse(p)
	}
	c.JSON(http.StatusOK, response)
}

// Get
// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

// Create
// POST /api/admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), middleware.GetActor(c), toProductInput(req))
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(product))
}

// Update
// PUT /api/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	var req models.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), middleware.GetActor(c), c.Param("id"), toProductInput(req))
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}
	c.JSON(http.StatusOK, toProductResponse(product))
}

// Delete
// DELETE /api/admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), middleware.GetActor(c), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}
	c.Status(http.StatusNoContent)
}
