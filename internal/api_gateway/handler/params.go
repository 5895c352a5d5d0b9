package handler

import (
	"strconv"
	"time"

	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// DefaultMaxPageSize caps per_page when no limit is configured
const DefaultMaxPageSize = 100

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func bindPagination(c *gin.Context, maxPerPage int) (PaginationParams, bool) {
	var p PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return p, false
	}
	if maxPerPage <= 0 {
		maxPerPage = DefaultMaxPageSize
	}
	p.PerPage = min(p.PerPage, maxPerPage)
	return p, true
}

// dateOrToday parses s, falling back to today's date in loc
func dateOrToday(field, s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return shared.DateOnly(time.Now().In(loc)), nil
	}
	return shared.ParseDate(field, s)
}
