package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rishabhmishra45/StaySync-sub001/internal/middleware"
	"github.com/Rishabhmishra45/StaySync-sub001/internal/models"
	"github.com/gin-gonic/gin"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(logger))
	return r
}

// decodeSingleBody fails the test when the response carries anything beyond
// one JSON object, so a second writer on the error path cannot go unnoticed.
func decodeSingleBody(t *testing.T, body []byte) models.ApiResponse {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(body))
	var resp models.ApiResponse
	if err := dec.Decode(&resp); err != nil {
		t.Fatalf("body is not valid JSON: %v (body: %s)", err, body)
	}
	if dec.More() {
		t.Fatalf("response contains more than one JSON body: %s", body)
	}
	return resp
}

func TestRespondErrorWritesSingleBody(t *testing.T) {
	r := newTestEngine()
	r.GET("/boom", func(c *gin.Context) {
		respondError(c, models.Internal("database unavailable", errors.New("dial tcp refused")))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp := decodeSingleBody(t, w.Body.Bytes())
	if resp.Success {
		t.Error("error response reports success")
	}
	if resp.Message != "Internal server error" {
		t.Errorf("message = %q, want generic message", resp.Message)
	}
}

func TestRespondErrorClientError(t *testing.T) {
	r := newTestEngine()
	r.GET("/missing", func(c *gin.Context) {
		respondError(c, models.NotFound("booking"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	resp := decodeSingleBody(t, w.Body.Bytes())
	if resp.Success || resp.Message != "booking not found" {
		t.Errorf("got success=%v message=%q", resp.Success, resp.Message)
	}
}

func TestErrorHandlerFallbackWhenNothingWritten(t *testing.T) {
	r := newTestEngine()
	r.GET("/silent", func(c *gin.Context) {
		_ = c.Error(errors.New("recorded but never written"))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/silent", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	resp := decodeSingleBody(t, w.Body.Bytes())
	if resp.Success {
		t.Error("fallback response reports success")
	}
}
