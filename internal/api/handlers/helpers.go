package handlers

import (
	"biodiversity-map-service/internal/platform/logger"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, gin.H{"error": msg})
}

// internalError logs err and answers with an opaque 500.
func internalError(c *gin.Context, op string, err error) {
	logger.L().Error(op+" failed", "method", c.Request.Method, "path", c.Request.URL.Path, "err", err)
	writeError(c, http.StatusInternalServerError, "internal server error")
}

// queryFloat parses the named query parameter. present is false when the
// parameter is absent or blank.
func queryFloat(c *gin.Context, name string) (v float64, present bool, err error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, true, err
	}
	return v, true, nil
}
