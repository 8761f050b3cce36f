package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"vegorder/internal/database"
	"vegorder/internal/middleware"
)

const (
	readTimeout  = 5 * time.Second
	maxBodyBytes = 1 << 20
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] [%s] panic recovered: %v", route, middleware.GetRequestID(c), r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] [%s] returning error %d: %s", route, middleware.GetRequestID(c), status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func respondWithDetails(c *gin.Context, status int, route string, message string, details []string) {
	log.Printf("[%s] [%s] returning error %d: %s %v", route, middleware.GetRequestID(c), status, message, details)
	c.AbortWithStatusJSON(status, gin.H{"error": message, "details": details})
}

// respondStoreError maps repository errors: ErrNotFound becomes 404 with
// notFoundMessage, anything else a 500.
func respondStoreError(c *gin.Context, route string, err error, notFoundMessage string) {
	if errors.Is(err, database.ErrNotFound) {
		respondWithError(c, http.StatusNotFound, route, notFoundMessage)
		return
	}
	respondListError(c, route, err)
}

// respondListError is for list and aggregate reads, where an empty result is
// not an error and every failure is a 500.
func respondListError(c *gin.Context, route string, err error) {
	log.Printf("[%s] [%s] store error: %v", route, middleware.GetRequestID(c), err)
	respondWithError(c, http.StatusInternalServerError, route, "db error")
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
