package controllers

import (
	"net/http"

	"sleep-tips/authentication"
	"sleep-tips/environment"
	"sleep-tips/models"

	"github.com/gin-gonic/gin"
)

// RateTip records the caller's vote (1..5) on a tip, a repeated vote replaces the previous one
func RateTip(c *gin.Context) {
	// anonymous struct used to receive input (POST BODY)
	data := struct {
		Rating *float64 `json:"rating"`
	}{}

	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, newError(InvalidJSON))
		return
	}
	if data.Rating == nil {
		c.JSON(http.StatusUnprocessableEntity, newError(RatingOutOfRange))
		return
	}

	value, err := models.ValidateRating(*data.Rating)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	ctx := c.Request.Context()
	tipID := c.Param("id")
	userID := authentication.CallerID(c)

	// votes on unknown tips would never show up in a ranking
	if _, err := environment.Env.Tips.Get(ctx, tipID); err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	result, err := environment.Env.Ratings.Rate(ctx, tipID, userID, value)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	environment.Env.Tracker.SaveRating(tipID, userID, value, result.Fallback)

	c.JSON(http.StatusOK, result)
}

// RemoveRating withdraws the caller's vote
func RemoveRating(c *gin.Context) {
	removed, err := environment.Env.Ratings.Remove(c.Request.Context(), c.Param("id"), authentication.CallerID(c))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// GetUserRatings returns the caller's votes, keyed by tip
// format => http://localhost:3000/user/ratings?tips=a,b,c
func GetUserRatings(c *gin.Context) {
	ratings, err := environment.Env.Ratings.ListForUser(c.Request.Context(),
		[]string{authentication.CallerID(c)},
		queryList(c, "tips"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, ratings)
}
