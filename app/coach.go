// Package app orchestrates AI coaching runs over argument drafts.
package app

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/marvinrgb/argue-well-api/app/models"
	"github.com/marvinrgb/argue-well-api/auth"

	"github.com/gin-gonic/gin"
)

type analyzeRequest struct {
	TextToAnalyze string `json:"textToAnalyze"`
}

type challengeRequest struct {
	TextToChallenge string `json:"textToChallenge"`
}

// AnalyzeArgument runs an argument's text through the coach, appends the
// result to the argument's history and charges free-tier quota. The quota
// check runs before the argument is loaded and before any upstream call, so
// an over-quota user gets 429 even for a nonexistent argument.
func AnalyzeArgument(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req analyzeRequest
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.TextToAnalyze) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Text to analyze cannot be empty."})
		return
	}

	ctx := c.Request.Context()

	user, err := store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
			return
		}
		log.Printf("analyze user lookup failed user=%s err=%v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during argument analysis."})
		return
	}

	now := time.Now()
	count, err := checkAnalysisQuota(user, now)
	if err != nil {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": quotaExceededMessage})
		return
	}

	arg, err := store.GetArgument(ctx, user.ID, c.Param("argumentId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrArgumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Argument not found."})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authorized to analyze this argument."})
		default:
			log.Printf("analyze argument lookup failed user=%s id=%s err=%v", user.ID, c.Param("argumentId"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during argument analysis."})
		}
		return
	}

	raw, err := generate(ctx, analysisPrompt(req.TextToAnalyze))
	if err != nil {
		log.Printf("coach generate failed user=%s arg=%s err=%v", user.ID, arg.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during argument analysis."})
		return
	}

	analysis, err := decodeAnalysis(raw)
	if err != nil {
		log.Printf("coach response rejected user=%s arg=%s err=%v", user.ID, arg.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Received an invalid response from the AI service. Please try again."})
		return
	}

	saved, err := store.AppendAnalysis(ctx, arg.ID, analysis)
	if err != nil {
		log.Printf("append analysis failed user=%s arg=%s err=%v", user.ID, arg.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during argument analysis."})
		return
	}

	if user.SubscriptionTier == models.TierFree {
		if err := store.UpdateUserUsage(ctx, user.ID, count+1, now); err != nil {
			log.Printf("usage update failed user=%s err=%v", user.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during argument analysis."})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"analysis": saved})
}

// DevilsAdvocate generates counter-arguments for any text the caller sends.
// It only requires authentication: the argument id in the path is not
// validated or checked for ownership.
func DevilsAdvocate(c *gin.Context) {
	_, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	var req challengeRequest
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.TextToChallenge) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Text to challenge cannot be empty."})
		return
	}

	raw, err := generate(c.Request.Context(), counterArgumentsPrompt(req.TextToChallenge))
	if err != nil {
		log.Printf("devils advocate generate failed err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while generating counter-arguments."})
		return
	}

	counterArgs, err := decodeCounterArguments(raw)
	if err != nil {
		log.Printf("devils advocate response rejected err=%v", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": "Received an invalid response from the AI service. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"counterArguments": counterArgs})
}
