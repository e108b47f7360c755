// Package app provides registration, login and identity endpoints.
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
	"golang.org/x/crypto/bcrypt"
)

// tokens issues access tokens for register/login. Set by NewRouter.
var tokens *auth.Verifier

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Register creates a user account and returns a signed access token.
func Register(c *gin.Context) {
	if tokens == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "auth not configured"})
		return
	}

	var req credentialsRequest
	_ = c.ShouldBindJSON(&req)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "A valid email is required"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Password must be at least 8 characters"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bcrypt hash failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	user, err := store.CreateUser(c.Request.Context(), email, string(hash))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email already in use"})
			return
		}
		log.Printf("create user failed email=%s err=%v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	token, err := tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Printf("token issue failed user=%s err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  user,
	})
}

// Login verifies credentials and returns a signed access token.
func Login(c *gin.Context) {
	if tokens == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "auth not configured"})
		return
	}

	var req credentialsRequest
	_ = c.ShouldBindJSON(&req)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	user, err := store.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		log.Printf("login lookup failed email=%s err=%v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	token, err := tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Printf("token issue failed user=%s err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns monthly usage info for the authenticated user. The displayed
// count reflects month rollover without persisting the reset.
func Me(c *gin.Context) {
	claims, ok := auth.ClaimsFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
		return
	}

	user, err := store.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
			return
		}
		log.Printf("me lookup failed user=%s err=%v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server Error"})
		return
	}

	count := rolloverCount(user.MonthlyAnalysisCount, user.LastAnalysisDate, time.Now())

	var monthlyLimit any = nil
	var remaining any = nil
	if user.SubscriptionTier == models.TierFree {
		monthlyLimit = FreeMonthlyLimit
		remainingCount := FreeMonthlyLimit - count
		if remainingCount < 0 {
			remainingCount = 0
		}
		remaining = remainingCount
	}

	c.JSON(http.StatusOK, gin.H{
		"email":                user.Email,
		"subscriptionTier":     user.SubscriptionTier,
		"monthlyAnalysisCount": count,
		"monthlyLimit":         monthlyLimit,
		"remaining":            remaining,
	})
}
