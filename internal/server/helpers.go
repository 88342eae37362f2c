package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	DefaultRecentLimit = 10
	MaxListLimit       = 100
)

// queryLimit reads a positive limit from the query string, falling back to
// def when it is missing or malformed and capping it at MaxListLimit.
func queryLimit(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// mixKey turns a catch-all path parameter into a mix key. Keys look like
// "/artist/mix-name/"; the trailing slash is restored when a client drops it.
func mixKey(c *gin.Context) string {
	key := c.Param("key")
	if key == "" || key == "/" {
		return ""
	}
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}
	return key
}

func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
