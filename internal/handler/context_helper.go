// Package handler exposes the HTTP surface over the service layer.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErrors "github.com/ssekandi/psms-api/pkg/errors"
)

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.ErrValidation.Clone("Invalid " + name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter with a fallback.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// queryInt64 parses a required int64 query parameter.
func queryInt64(c *gin.Context, name string) (int64, error) {
	value, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || value <= 0 {
		return 0, appErrors.ErrValidation.Clone("Invalid or missing " + name)
	}
	return value, nil
}
