package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soabuilder/soa-backend/internal/pkg/apierr"
)

func uintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, apierr.Invalid("invalid %s: %q", name, raw)
	}
	return uint(v), nil
}
