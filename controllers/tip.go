package controllers

import (
	"errors"
	"net/http"
	"strings"

	"sleep-tips/apperror"
	"sleep-tips/authentication"
	"sleep-tips/docstore"
	"sleep-tips/environment"
	"sleep-tips/lookups"
	"sleep-tips/models"

	"github.com/gin-gonic/gin"
)

// ListTips returns the newest published tips
// format => http://localhost:3000/tips?category=xyz&author=abc&limit=20
// drafts=yes lists the caller's own drafts too (requires a session)
func ListTips(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, newError(InvalidRequest))
		return
	}

	filter := models.TipFilter{
		Limit:      limit,
		CategoryID: c.Query("category"),
		AuthorID:   c.Query("author"),
	}

	if strings.EqualFold(c.Query("drafts"), "yes") {
		// error maybe ignored here, anonymous callers only get published tips
		userID, _, _ := authentication.Authenticate(c.Request)
		if userID != "" {
			filter.IncludeDrafts = true
			filter.AuthorID = userID
		}
	}

	tips, err := environment.Env.Tips.List(c.Request.Context(), filter)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, tips)
}

// SearchTips filters the newest published tips by text
// format => http://localhost:3000/tips/search?q=sleep&category=xyz
func SearchTips(c *gin.Context) {
	tips, err := environment.Env.Tips.Search(c.Request.Context(), models.TipSearch{
		Text:       c.Query("q"),
		CategoryID: c.Query("category"),
	})
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, tips)
}

// GetTip returns the specified tip and counts the visit
func GetTip(c *gin.Context) {
	// no error checking because it's optional (drafts are only shown to their authors)
	userID, _, _ := authentication.Authenticate(c.Request)

	id := c.Param("id")
	tip, err := environment.Env.Tips.Get(c.Request.Context(), id)
	if err != nil {
		// nothing found (not an error to the client)
		if errors.Is(err, apperror.ErrNoData) {
			c.Status(http.StatusNoContent)
			return
		}
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	if tip.Status != lookups.TipStatusPublished && tip.AuthorID != userID {
		c.Status(http.StatusNoContent)
		return
	}

	environment.Env.Tracker.SaveView(c.ClientIP(), id, userID)

	c.JSON(http.StatusOK, tip)
}

// AddTip creates a new tip (draft unless a status is given)
func AddTip(c *gin.Context) {
	var data docstore.Data

	// use "shouldBind" so we can send customized messages
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, newError(InvalidJSON))
		return
	}

	tip, err := environment.Env.Tips.Create(c.Request.Context(), authentication.CallerID(c), data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusCreated, tip)
}

// UpdateTip writes the given fields of a tip
func UpdateTip(c *gin.Context) {
	var data docstore.Data

	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, newError(InvalidJSON))
		return
	}

	tip, err := environment.Env.Tips.Update(c.Request.Context(), c.Param("id"), authentication.CallerID(c), data)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, tip)
}

// DeleteTip removes a tip
func DeleteTip(c *gin.Context) {
	err := environment.Env.Tips.Delete(c.Request.Context(), c.Param("id"), authentication.CallerID(c))
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.Status(http.StatusOK)
}

// PublishTip makes a draft visible
func PublishTip(c *gin.Context) {
	setPublished(c, true)
}

// UnpublishTip turns a tip back into a draft
func UnpublishTip(c *gin.Context) {
	setPublished(c, false)
}

func setPublished(c *gin.Context, publish bool) {
	tip, err := environment.Env.Tips.Publish(c.Request.Context(), c.Param("id"), authentication.CallerID(c), publish)
	if err != nil {
		status, apiError := HandleError(err)
		c.JSON(status, apiError)
		return
	}

	c.JSON(http.StatusOK, tip)
}
