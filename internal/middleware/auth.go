// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/beatstore/backend/internal/models"
	"github.com/beatstore/backend/internal/utils"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// resolveUser validates the token and checks the subject still exists.
func resolveUser(db *gorm.DB, tokens *utils.TokenIssuer, token string) (*models.User, *utils.JWTClaims, bool) {
	claims, err := tokens.Validate(token)
	if err != nil {
		return nil, nil, false
	}

	var user models.User
	if err := db.Where("username = ?", claims.Subject).First(&user).Error; err != nil {
		return nil, nil, false
	}
	return &user, claims, true
}

func setIdentity(c *gin.Context, user *models.User, claims *utils.JWTClaims) {
	c.Set("user_id", user.ID.String())
	c.Set("username", user.Username)
	c.Set("token_type", claims.TokenType)
}

func AuthRequired(db *gorm.DB, tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		user, claims, ok := resolveUser(db, tokens, token)
		if !ok {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		setIdentity(c, user, claims)
		c.Next()
	}
}

// OptionalAuth resolves the identity when a valid token is present and
// silently continues anonymously otherwise.
func OptionalAuth(db *gorm.DB, tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		user, claims, ok := resolveUser(db, tokens, token)
		if !ok {
			c.Next()
			return
		}

		setIdentity(c, user, claims)
		c.Next()
	}
}

// AdminRequired gates the admin surface. Both the embedded admin claim
// and the user's live admin flag must hold; the claim distinguishes admin
// sessions from ordinary ones, the flag catches demotions on new tokens.
func AdminRequired(db *gorm.DB, tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		user, claims, ok := resolveUser(db, tokens, token)
		if !ok {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if claims.TokenType != utils.TokenTypeAdmin || !user.IsAdmin {
			utils.ForbiddenResponse(c, "Admin access required")
			c.Abort()
			return
		}

		setIdentity(c, user, claims)
		c.Next()
	}
}
