package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sce-storefront/internal/models"
	"sce-storefront/internal/store"
)

// ResetMailer delivers password-reset links. Satisfied by email.Mailer.
type ResetMailer interface {
	SendPasswordReset(to, resetLink string) error
}

// AuthHandler owns the admin account endpoints.
type AuthHandler struct {
	Users     store.UserStore
	Mailer    ResetMailer
	JwtSecret string
	BaseURL   string
}

func NewAuthHandler(users store.UserStore, mailer ResetMailer, jwtSecret, baseURL string) *AuthHandler {
	return &AuthHandler{Users: users, Mailer: mailer, JwtSecret: jwtSecret, BaseURL: baseURL}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// We MUST NOT store the plain-text password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Password hashing error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error, please try again."})
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
	}
	if err := h.Users.Create(&user); err != nil {
		log.Println("Failed to insert new user:", err)
		// Unique constraints on username and email land here.
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) createJWT(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour * 24 * 7).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JwtSecret))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing credentials"})
		return
	}

	user, err := h.Users.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same message as a bad password so the response does not
			// confirm which credential was wrong.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		log.Println("Database error on login:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	tokenString, err := h.createJWT(user)
	if err != nil {
		log.Println("Failed to create JWT:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
		"token": tokenString,
	})
}

type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestPasswordReset issues a reset token and emails the reset link. The
// response is 200 whether or not the email exists, so the endpoint cannot
// be used to enumerate accounts.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
		return
	}

	user, err := h.Users.GetByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Println("Database error on password reset:", err)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent successfully"})
		return
	}

	token := uuid.NewString()
	expires := time.Now().Add(24 * time.Hour)
	if err := h.Users.SetResetToken(user.ID, token, expires); err != nil {
		log.Println("Failed to store reset token:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email."})
		return
	}

	resetLink := h.BaseURL + "/reset-password/confirm?token=" + token +
		"&email=" + url.QueryEscape(user.Email)
	if err := h.Mailer.SendPasswordReset(user.Email, resetLink); err != nil {
		log.Println("Error sending reset email:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reset email. Please check your email configuration."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent successfully"})
}

type ResetConfirmRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.Users.GetByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	if user.ResetToken == nil || *user.ResetToken != req.Token ||
		user.ResetTokenExpires == nil || time.Now().After(*user.ResetTokenExpires) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Password hashing error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error, please try again."})
		return
	}

	if err := h.Users.UpdatePassword(user.ID, string(passwordHash)); err != nil {
		log.Println("Failed to update password:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
