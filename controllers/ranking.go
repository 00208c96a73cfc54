package controllers

import (
	"net/http"

	"sleep-tips/environment"
	"sleep-tips/lookups"

	"github.com/gin-gonic/gin"
)

// ListRankings returns the leaderboard of published tips
// format => http://localhost:3000/rankings?range=week&limit=10&direction=top
func ListRankings(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, newError(InvalidRequest))
		return
	}

	timeRange := lookups.TimeRange(c.DefaultQuery("range", string(lookups.RangeAll)))
	direction := lookups.Direction(c.DefaultQuery("direction", string(lookups.DirectionTop)))

	ranked, err := environment.Env.Rankings.Rank(c.Request.Context(), timeRange, limit, direction)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	environment.Env.Tracker.SaveRanking(timeRange, direction, ranked)

	c.JSON(http.StatusOK, ranked)
}
