package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Created is the standard response for new items
type Created struct {
	ID string `json:"id"`
}

// queryInt reads an optional numeric query parameter; ok is false for malformed values
func queryInt(c *gin.Context, key string) (value int, ok bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// queryList splits a comma separated query parameter, ignoring empty items
func queryList(c *gin.Context, key string) []string {
	list := make([]string, 0)
	for _, item := range strings.Split(c.Query(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
