package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vegorder/internal/middleware"
	"vegorder/internal/models"
	"vegorder/internal/orders"
	"vegorder/internal/port"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, req orders.CreateOrderRequest) (*orders.Result, error)
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(svc OrderCreator) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		body, err := c.GetRawData()
		if err != nil {
			log.Printf("[%s] [%s] read error: %v", route, middleware.GetRequestID(c), err)
			respondWithDetails(c, http.StatusBadRequest, route, "validation failed", []string{"invalid request body"})
			return
		}

		// wrongly typed fields come back from CreateOrder as a ValidationError
		req, err := orders.DecodeCreateOrderRequest(body)
		if err != nil {
			log.Printf("[%s] [%s] decode error: %v", route, middleware.GetRequestID(c), err)
			respondWithDetails(c, http.StatusBadRequest, route, "validation failed", []string{"invalid request body"})
			return
		}

		res, err := svc.CreateOrder(c.Request.Context(), req)
		if err != nil {
			respondCreateOrderError(c, route, err)
			return
		}

		message := "order created successfully"
		if !res.EmailSent {
			message = "order created successfully, but email notification failed"
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": message,
			"data":    res,
		})
	}
}

func respondCreateOrderError(c *gin.Context, route string, err error) {
	var (
		validationErr  orders.ValidationError
		notFoundErr    orders.ProductNotFoundError
		unavailableErr orders.ProductUnavailableError
	)

	switch {
	case errors.As(err, &validationErr):
		respondWithDetails(c, http.StatusBadRequest, route, "validation failed", validationErr.Fields)
	case errors.As(err, &notFoundErr):
		log.Printf("[%s] [%s] returning error %d: %v", route, middleware.GetRequestID(c), http.StatusNotFound, err)
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":       notFoundErr.Error(),
			"product_ids": notFoundErr.ProductIDs,
		})
	case errors.As(err, &unavailableErr):
		log.Printf("[%s] [%s] returning error %d: %v", route, middleware.GetRequestID(c), http.StatusBadRequest, err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":      unavailableErr.Error(),
			"product_id": unavailableErr.ProductID,
		})
	default:
		respondWithError(c, http.StatusInternalServerError, route, "failed to create order")
	}
}

/* =========================
   ADMIN ORDERS
========================= */

func GetOrders(repo port.OrderRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		var filter models.OrderFilter
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			status, err := models.ToOrderStatus(raw)
			if err != nil {
				respondInvalidStatus(c, route, err)
				return
			}
			filter.Status = &status
		}

		limit, offset, err := parseLimitOffset(c.Query("limit"), c.Query("offset"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		filter.Limit, filter.Offset = limit, offset

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		list, total, err := repo.ListOrders(ctx, filter)
		if err != nil {
			respondListError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d of %d orders", route, len(list), total)
		c.JSON(http.StatusOK, gin.H{
			"data":       list,
			"pagination": newPagination(total, limit, offset),
		})
	}
}

func GetOrder(repo port.OrderRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		orderID, ok := parseIDParam(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		o, err := repo.GetOrder(ctx, orderID)
		if err != nil {
			respondStoreError(c, route, err, "order not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": gin.H{"order": o.Order, "items": o.Items}})
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func UpdateOrderStatus(repo port.OrderRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id/status"
		defer handlePanic(c, route)

		orderID, ok := parseIDParam(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "status is required")
			return
		}

		status, err := models.ToOrderStatus(req.Status)
		if err != nil {
			respondInvalidStatus(c, route, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		updated, err := repo.UpdateOrderStatus(ctx, orderID, status)
		if err != nil {
			respondStoreError(c, route, err, "order not found")
			return
		}

		log.Printf("[ORDER] [INFO] order #%d status set to %s", orderID, status)
		c.JSON(http.StatusOK, gin.H{"message": "order status updated", "data": updated})
	}
}

func DeleteOrder(repo port.OrderRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /orders/:id"
		defer handlePanic(c, route)

		orderID, ok := parseIDParam(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		deleted, err := repo.DeleteOrder(ctx, orderID)
		if err != nil {
			respondStoreError(c, route, err, "order not found")
			return
		}

		log.Printf("[ORDER] [INFO] order #%d deleted", orderID)
		c.JSON(http.StatusOK, gin.H{"message": "order deleted", "data": deleted})
	}
}

func GetOrderStats(repo port.OrderRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/stats"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
		defer cancel()

		stats, err := repo.OrderStats(ctx)
		if err != nil {
			respondListError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": stats})
	}
}

func respondInvalidStatus(c *gin.Context, route string, err error) {
	log.Printf("[%s] [%s] returning error %d: %v", route, middleware.GetRequestID(c), http.StatusBadRequest, err)
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":          err.Error(),
		"valid_statuses": models.OrderStatuses(),
	})
}
