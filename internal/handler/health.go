package handler

import (
	"context"
	"net/http"
	"time"

	"tileledger/internal/infra"

	"github.com/gin-gonic/gin"
)

// Pinger is the slice of the row store the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health returns a JSON health check response.
// Checks store connectivity and the breaker state; never exposes credentials or internals.
func Health(store Pinger, breaker *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "connected"
		if store.Ping(ctx) != nil {
			storeStatus = "error"
		}

		breakerState := infra.CBClosed.String()
		if breaker != nil {
			breakerState = breaker.State().String()
		}

		status := http.StatusOK
		if storeStatus != "connected" || breakerState == infra.CBOpen.String() {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":      status == http.StatusOK,
			"store":   storeStatus,
			"breaker": breakerState,
		})
	}
}
