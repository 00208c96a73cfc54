package controllers

import (
	"net/http"

	"sleep-tips/authentication"
	"sleep-tips/environment"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Text string `json:"text"`
}

// ListComments returns the newest comments of a tip with their author names
func ListComments(c *gin.Context) {
	ctx := c.Request.Context()

	comments, err := environment.Env.Comments.Fetch(ctx, c.Param("id"))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, environment.Env.Comments.AttachAuthorNames(ctx, comments))
}

// AddComment creates a new comment of the caller
func AddComment(c *gin.Context) {
	var data commentRequest

	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, newError(InvalidJSON))
		return
	}

	ctx := c.Request.Context()
	tipID := c.Param("id")

	if _, err := environment.Env.Tips.Get(ctx, tipID); err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	comment, err := environment.Env.Comments.Create(ctx, tipID, authentication.CallerID(c), data.Text)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// UpdateComment replaces the text of the caller's comment
func UpdateComment(c *gin.Context) {
	var data commentRequest

	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, newError(InvalidJSON))
		return
	}

	comment, err := environment.Env.Comments.Update(c.Request.Context(), c.Param("id"), authentication.CallerID(c), data.Text)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment removes the caller's comment
func DeleteComment(c *gin.Context) {
	err := environment.Env.Comments.Delete(c.Request.Context(), c.Param("id"), authentication.CallerID(c))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
