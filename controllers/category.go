package controllers

import (
	"net/http"

	"sleep-tips/authentication"
	"sleep-tips/environment"

	"github.com/gin-gonic/gin"
)

// categoryRequest is the body of add & update; missing fields are not changed on update
type categoryRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ListCategories returns the newest categories
func ListCategories(c *gin.Context) {
	categories, err := environment.Env.Categories.List(c.Request.Context())
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// AddCategory creates a new category owned by the caller
func AddCategory(c *gin.Context) {
	var data categoryRequest

	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, newError(InvalidJSON))
		return
	}

	var title, description string
	if data.Title != nil {
		title = *data.Title
	}
	if data.Description != nil {
		description = *data.Description
	}

	category, err := environment.Env.Categories.Create(c.Request.Context(), authentication.CallerID(c), title, description)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// UpdateCategory changes title and/or description
func UpdateCategory(c *gin.Context) {
	var data categoryRequest

	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, newError(InvalidJSON))
		return
	}

	category, err := environment.Env.Categories.Update(c.Request.Context(), c.Param("id"), authentication.CallerID(c), data.Title, data.Description)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category (its tips keep the reference)
func DeleteCategory(c *gin.Context) {
	err := environment.Env.Categories.Delete(c.Request.Context(), c.Param("id"), authentication.CallerID(c))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}
