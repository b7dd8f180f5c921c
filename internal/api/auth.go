package api

import (
	"arcade_finder/internal/domain" // Importing domain models
	"arcade_finder/internal/utils"  // Utility functions
	"net/http"                      // HTTP status codes
	"strings"                       // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request and Response structs
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`       // Username must be provided
	Email    string `json:"email" binding:"required,email"`    // Email must be provided and well-formed
	Password string `json:"password" binding:"required,min=8"` // Password must be provided, 8+ characters
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string      `json:"token"` // JWT token
	User  domain.User `json:"user"`  // Authenticated user (password hash is never serialized)
}

// RegisterHandler creates a new user and returns a session token
func RegisterHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Username, email and password are required"})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		email := strings.ToLower(req.Email) // Store emails lowercase to keep uniqueness case-insensitive
		// Reject duplicate registrations before writing anything
		var existing domain.User
		if err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Email already registered"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to hash password"})
			return
		}
		user := domain.User{Username: req.Username, Email: email, Password: string(hash)}
		// Attempt to create the user in the database
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"email": email,       // Attempted email
				"error": err.Error(), // Error message
			}).Error("Registration failed") // Log registration failure
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to create user"})
			return
		}
		// Issue a session token for the new user
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to generate token"})
			return
		}
		// Return the token and the created user
		c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Email and password are required"})
			return
		}
		ctx, cancel := reqCtx(c) // Bound all statements to the request lifecycle
		defer cancel()
		var user domain.User // Fetch user from database
		if err := db.WithContext(ctx).Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// Unknown email and wrong password are indistinguishable to the caller
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Failed to generate token"})
			return
		}
		// Return the token and the user record
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
	}
}
