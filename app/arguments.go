// Package app exposes CRUD endpoints over a user's argument drafts.
package app

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/marvinrgb/argue-well-api/app/models"
	"github.com/marvinrgb/argue-well-api/auth"

	"github.com/gin-gonic/gin"
)

type createArgumentRequest struct {
	Topic string `json:"topic"`
}

// CreateArgument starts a new draft with an empty claim.
func CreateArgument(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req createArgumentRequest
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Topic) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Topic is required"})
		return
	}

	arg, err := store.CreateArgument(c.Request.Context(), claims.UserID, req.Topic)
	if err != nil {
		log.Printf("create argument failed user=%s err=%v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"argumentId": arg.ID,
		"topic":      arg.Topic,
	})
}

// ListArguments returns the user's argument library, most recently touched
// first.
func ListArguments(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	items, err := store.ListArguments(c.Request.Context(), claims.UserID)
	if err != nil {
		log.Printf("list arguments failed user=%s err=%v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}
	if items == nil {
		items = []models.ArgumentSummary{}
	}

	c.JSON(http.StatusOK, items)
}

// GetArgument returns a full argument including its analysis history.
func GetArgument(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	arg, err := store.GetArgument(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrArgumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Argument not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized to view this argument"})
		default:
			log.Printf("get argument failed user=%s id=%s err=%v", claims.UserID, c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, arg)
}

// UpdateArgument overwrites any text fields present and non-empty in the
// body; absent or empty fields are left unchanged.
func UpdateArgument(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req models.ArgumentUpdate
	_ = c.ShouldBindJSON(&req)

	arg, err := store.UpdateArgument(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrArgumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Argument not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized to update this argument"})
		default:
			log.Printf("update argument failed user=%s id=%s err=%v", claims.UserID, c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, arg)
}
