package middleware

import (
	"errors"
	"log"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/models"
	"gorm.io/gorm"
)

const currentUserKey = "current_user"

// LoadCurrentUser attaches the registered user behind the token subject to
// the context. Unregistered subjects pass through without a user, except
// adminSubject, which is provisioned as an admin on first use.
func LoadCurrentUser(db *gorm.DB, adminSubject string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			c.Next()
			return
		}

		var user models.User
		err = db.WithContext(c.Request.Context()).Where("auth0_id = ?", auth0ID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) && adminSubject != "" && auth0ID == adminSubject {
			user = models.User{
				Auth0ID: auth0ID,
				Name:    "Administrator",
				Email:   "admin@localhost",
				Role:    models.RoleAdmin,
			}
			err = db.WithContext(c.Request.Context()).Create(&user).Error
			if err == nil {
				log.Printf("Provisioned default admin for %s", auth0ID)
			}
		}

		switch {
		case err == nil:
			c.Set(currentUserKey, &user)
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			log.Printf("Failed to load user %s: %v", auth0ID, err)
			abortWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user profile")
			return
		}

		c.Next()
	}
}

// GetCurrentUser returns the user loaded by LoadCurrentUser
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	user, err := contextValue[*models.User](c, currentUserKey, "USER")
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) && authErr.Code == "MISSING_USER" {
			return nil, &AuthError{Code: "USER_NOT_FOUND", Message: "User profile not found. Please create a profile first."}
		}
		return nil, err
	}
	return user, nil
}

// SetCurrentUser stores user in the context
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

// RequireRole rejects requests whose user is unregistered or holds none of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil {
			abortWithError(c, http.StatusForbidden, "USER_NOT_FOUND", err.Error())
			return
		}
		if !slices.Contains(roles, user.Role) {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Your role does not allow this action")
			return
		}
		c.Next()
	}
}
