package logger

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	_, err := Setup(Options{File: path, Level: "debug"})
	require.NoError(t, err)

	logrus.WithField("kind", "route").Info("store loaded")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "store loaded")
	assert.Contains(t, string(data), "kind=route")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	_, err := Setup(Options{File: filepath.Join(t.TempDir(), "x.log"), Level: "loud"})
	assert.Error(t, err)
}

func TestAccessLog_SkipsHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer

	r := gin.New()
	r.Use(AccessLog(&buf))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/view", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Zero(t, buf.Len())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/view", nil))
	assert.Contains(t, buf.String(), "/api/view")
}
