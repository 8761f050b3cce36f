package handlers

import (
	"github.com/gin-gonic/gin"

	"vegorder/internal/middleware"
	"vegorder/internal/port"
)

type Deps struct {
	Health    Pinger
	Orders    OrderCreator
	OrderRepo port.OrderRepository
	Products  port.ProductRepository
	JWTSecret string
}

// RegisterRoutes mounts the API under /api/v1.
func RegisterRoutes(r gin.IRouter, d Deps) {
	api := r.Group("/api/v1")
	admin := middleware.AdminAuth(d.JWTSecret)

	api.GET("/health", Health(d.Health))

	api.POST("/orders", CreateOrder(d.Orders))
	api.GET("/orders", admin, GetOrders(d.OrderRepo))
	api.GET("/orders/stats", admin, GetOrderStats(d.OrderRepo))
	api.GET("/orders/:id", admin, GetOrder(d.OrderRepo))
	api.PATCH("/orders/:id/status", admin, UpdateOrderStatus(d.OrderRepo))
	api.DELETE("/orders/:id", admin, DeleteOrder(d.OrderRepo))

	api.GET("/products", GetProducts(d.Products))
	api.GET("/products/categories", GetCategories(d.Products))
	api.GET("/products/low-stock", admin, GetLowStockProducts(d.Products))
	api.GET("/products/stock-report", admin, GetStockReport(d.Products))
	api.GET("/products/:id", GetProduct(d.Products))
	api.PATCH("/products/:id/stock", admin, UpdateProductStock(d.Products))
}
