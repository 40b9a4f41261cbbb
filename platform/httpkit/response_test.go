package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/niketshah083/lead-management-backend-sub002/platform/apperr"

	"github.com/gin-gonic/gin"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	return c, recorder
}

func TestHandleErrorMapsTypedKinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.NotFound("lead not found"), http.StatusNotFound},
		{"conflict", apperr.Conflict("already exists"), http.StatusConflict},
		{"unavailable", apperr.Unavailable("storage temporarily unavailable", errors.New("dial refused")), http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, recorder := newTestContext()
			if !HandleError(c, tc.err) {
				t.Fatal("expected the error to be handled")
			}
			if recorder.Code != tc.want {
				t.Fatalf("status = %d, want %d", recorder.Code, tc.want)
			}
		})
	}
}

func TestHandleErrorUntypedIsServerFaultWithoutLeak(t *testing.T) {
	c, recorder := newTestContext()

	internal := errors.New("dial tcp 10.0.0.5:5432: connect: connection refused")
	if !HandleError(c, internal) {
		t.Fatal("expected the error to be handled")
	}

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusInternalServerError)
	}
	if strings.Contains(recorder.Body.String(), "10.0.0.5") {
		t.Fatal("internal error text must not reach the client")
	}
}

func TestHandleErrorNilIsNotHandled(t *testing.T) {
	c, _ := newTestContext()
	if HandleError(c, nil) {
		t.Fatal("nil error must not be handled")
	}
}
