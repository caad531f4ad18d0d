package daemon

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestGinLogger(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)

	tests := []struct {
		name      string
		path      string
		handler   gin.HandlerFunc
		wantLevel logrus.Level
	}{
		{
			name:      "ok",
			path:      "/info",
			handler:   func(c *gin.Context) { c.Status(http.StatusOK) },
			wantLevel: logrus.DebugLevel,
		},
		{
			name:      "polled path",
			path:      "/value",
			handler:   func(c *gin.Context) { c.Status(http.StatusOK) },
			wantLevel: logrus.TraceLevel,
		},
		{
			name: "bad request",
			path: "/precision",
			handler: func(c *gin.Context) {
				_ = c.AbortWithError(http.StatusBadRequest, errors.New("bad precision"))
			},
			wantLevel: logrus.WarnLevel,
		},
		{
			name: "server error",
			path: "/config",
			handler: func(c *gin.Context) {
				_ = c.AbortWithError(http.StatusInternalServerError, errors.New("disk full"))
			},
			wantLevel: logrus.ErrorLevel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.TraceLevel)

			router := gin.New()
			router.Use(ginLogger(logger))
			router.GET(tt.path, tt.handler)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			entry := hook.LastEntry()
			if entry == nil {
				t.Fatal("nothing logged")
			}
			if entry.Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry.Level, tt.wantLevel)
			}
			if entry.Data["path"] != tt.path {
				t.Errorf("path field = %v, want %s", entry.Data["path"], tt.path)
			}
		})
	}
}
