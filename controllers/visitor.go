package controllers

import (
	"net/http"
	"time"

	"sleep-tips/environment"

	"github.com/gin-gonic/gin"
)

// GetViews counts the visits of a tip; -1 if analytics are disabled
// http://localhost:3000/tips/604b6859f09f3aeecc9215c5/views?startDT=2024-03-20
func GetViews(c *gin.Context) {
	var startDT time.Time

	startStr := c.Query("startDT")
	if startStr == "" {
		// default: 7 days back (starting at 00:00:00)
		startDT = time.Now().UTC().AddDate(0, 0, -7)
		startDT = time.Date(startDT.Year(), startDT.Month(), startDT.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		var err error
		startDT, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, newError(InvalidRequest))
			return
		}
	}

	views, err := environment.Env.Tracker.GetViews(c.Request.Context(), c.Param("id"), startDT)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"views": views})
}
