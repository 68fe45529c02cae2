package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipehub/backend/internal/model"
)

// Interceptor runs before a route handler. It either returns the context the
// next step should see, or a Rejection that ends the request.
type Interceptor func(ctx context.Context, r *http.Request) (context.Context, *Rejection)

// Rejection is the response written when an interceptor stops a request.
type Rejection struct {
	Status  int
	Message string
}

// Pipeline runs interceptors in order. The first rejection aborts the chain
// and the route handler is never called.
func Pipeline(interceptors ...Interceptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		for _, intercept := range interceptors {
			next, rejection := intercept(ctx, c.Request)
			if rejection != nil {
				c.AbortWithStatusJSON(rejection.Status, model.ErrorResponse{
					Success: false,
					Message: rejection.Message,
				})
				return
			}
			ctx = next
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
