package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"vegorder/internal/models"
	"vegorder/internal/port"
)

// productView adds the derived stock fields to a product.
type productView struct {
	models.Product
	Price          string           `json:"price"`
	StockDisplay   string           `json:"stock_display"`
	AvailableStock decimal.Decimal  `json:"available_stock"`
	StockStatus    string           `json:"stock_status"`
	Shortage       *decimal.Decimal `json:"shortage,omitempty"`
}

func newProductView(p models.Product) productView {
	return productView{
		Product:        p,
		Price:          models.Money(p.Price),
		StockDisplay:   p.StockDisplay(),
		AvailableStock: p.AvailableStock(),
		StockStatus:    p.StockStatus(),
	}
}

func newProductViews(products []models.Product) []productView {
	return lo.Map(products, func(p models.Product, _ int) productView {
		return newProductView(p)
	})
}

/*
GET /products
- category, type, available filters
- low_stock=true keeps products at or below their reorder level
*/
func GetProducts(repo port.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		log.Printf(
			"[%s] hit category=%s type=%s available=%s low_stock=%s",
			route,
			c.Query("category"),
			c.Query("type"),
			c.Query("available"),
			c.Query("low_stock"),
		)

		filter := models.ProductFilter{
			Category: strings.TrimSpace(c.Query("category")),
			Type:     strings.TrimSpace(c.Query("type")),
		}
		if raw := strings.TrimSpace(c.Query("available")); raw != "" {
			available, err := strconv.ParseBool(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "available must be true or false")
				return
			}
			filter.Available = &available
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		products, err := repo.ListProducts(ctx, filter)
		if err != nil {
			respondListError(c, route, err)
			return
		}

		if c.Query("low_stock") == "true" {
			products = lo.Filter(products, func(p models.Product, _ int) bool {
				return p.Stock.LessThanOrEqual(p.NeedToOrder)
			})
		}

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, gin.H{"data": newProductViews(products)})
	}
}

func GetProduct(repo port.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		productID, ok := parseIDParam(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		product, err := repo.GetProduct(ctx, productID)
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": newProductView(product)})
	}
}

func GetLowStockProducts(repo port.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/low-stock"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		products, err := repo.LowStockProducts(ctx)
		if err != nil {
			respondListError(c, route, err)
			return
		}

		views := lo.Map(products, func(p models.Product, _ int) productView {
			v := newProductView(p)
			shortage := p.Shortage()
			v.Shortage = &shortage
			return v
		})
		c.JSON(http.StatusOK, gin.H{"data": views})
	}
}

func GetStockReport(repo port.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/stock-report"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		report, err := repo.StockReport(ctx)
		if err != nil {
			respondListError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": report})
	}
}

func UpdateProductStock(repo port.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /products/:id/stock"
		defer handlePanic(c, route)

		productID, ok := parseIDParam(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		var update models.StockUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}
		if update.IsEmpty() {
			respondWithError(c, http.StatusBadRequest, route, "at least one of stock, used, need_to_order is required")
			return
		}
		update, details := update.Checked()
		if len(details) > 0 {
			respondWithDetails(c, http.StatusBadRequest, route, "validation failed", details)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		product, err := repo.UpdateStock(ctx, productID, update)
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		log.Printf("[PRODUCT] [INFO] stock updated for product #%d", productID)
		c.JSON(http.StatusOK, gin.H{"message": "stock updated", "data": newProductView(product)})
	}
}

func GetCategories(repo port.ProductRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/categories"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		categories, err := repo.Categories(ctx)
		if err != nil {
			respondListError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d categories", route, len(categories))
		c.JSON(http.StatusOK, gin.H{"data": categories})
	}
}
