package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRequestIDGenerated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())

	var captured string
	router.GET("/test", func(c *gin.Context) {
		captured = GetRequestID(c)
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if captured == "" {
		t.Fatal("Expected a generated request ID")
	}
	if _, err := uuid.Parse(captured); err != nil {
		t.Errorf("Generated request ID %q is not a valid UUID", captured)
	}
	if got := w.Header().Get("X-Request-ID"); got != captured {
		t.Errorf("Expected response header %q, got %q", captured, got)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())

	var captured string
	router.GET("/test", func(c *gin.Context) {
		captured = GetRequestID(c)
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if captured != "client-supplied-id" {
		t.Errorf("Expected client-supplied ID to be kept, got %q", captured)
	}
	if got := w.Header().Get("X-Request-ID"); got != "client-supplied-id" {
		t.Errorf("Expected response header 'client-supplied-id', got %q", got)
	}
}

func TestGetRequestIDUnset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetRequestID(c) != "" {
		t.Error("Expected empty string when request ID is not set")
	}
}
