package controllers

import (
	"net/http"

	"sleep-tips/environment"

	"github.com/gin-gonic/gin"
)

// CountRequests returns how many clients looked at a tip recently
func CountRequests(c *gin.Context) {
	c.JSON(http.StatusOK, environment.Env.Requests.Count())
}

// DumpRequests lists the last tip per client (max 50)
func DumpRequests(c *gin.Context) {
	c.JSON(http.StatusOK, environment.Env.Requests.Dump(50))
}

// FlushRequests drops expired clients from the registry
func FlushRequests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"removed": environment.Env.Requests.Flush()})
}
