package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type ctxKey string

func TestPipelineOrderAndShortCircuit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var order []string
	tag := func(name string) Interceptor {
		return func(ctx context.Context, r *http.Request) (context.Context, *Rejection) {
			order = append(order, name)
			return context.WithValue(ctx, ctxKey(name), true), nil
		}
	}
	reject := func(ctx context.Context, r *http.Request) (context.Context, *Rejection) {
		order = append(order, "reject")
		return ctx, &Rejection{Status: http.StatusTeapot, Message: "no"}
	}

	calls := 0
	r := gin.New()
	r.GET("/ok", Pipeline(tag("a"), tag("b")), func(c *gin.Context) {
		calls++
		assert.Equal(t, true, c.Request.Context().Value(ctxKey("a")))
		assert.Equal(t, true, c.Request.Context().Value(ctxKey("b")))
		c.Status(http.StatusOK)
	})
	r.GET("/stop", Pipeline(tag("a"), reject, tag("c")), func(c *gin.Context) {
		calls++
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, calls)

	order = nil
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stop", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"no"}`, w.Body.String())
	assert.Equal(t, []string{"a", "reject"}, order)
	assert.Equal(t, 1, calls)
}
