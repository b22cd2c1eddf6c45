// middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"swipevault/internal/models"
	"swipevault/internal/utils"
)

// AuthMiddleware validates the session cookie and loads the owning user.
type AuthMiddleware struct {
	db            *mongo.Database
	sessionSecret []byte
}

func NewAuthMiddleware(db *mongo.Database, sessionSecret string) *AuthMiddleware {
	return &AuthMiddleware{db: db, sessionSecret: []byte(sessionSecret)}
}

// RequireAuth rejects the request with AuthRequired unless a valid,
// unexpired session cookie names an existing user.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(utils.SessionCookieName)
		if err != nil || cookie == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.ErrUnauthorized, "session cookie missing")
			c.Abort()
			return
		}

		userID, err := utils.ParseSessionToken(cookie, am.sessionSecret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.ErrInvalidToken, err.Error())
			c.Abort()
			return
		}

		user, err := am.getUser(c.Request.Context(), userID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, utils.ErrUserNotFound, "")
			c.Abort()
			return
		}

		c.Set(utils.ContextUserID, user.ID)
		c.Set("user", user)
		c.Next()
	}
}

func (am *AuthMiddleware) getUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := am.db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCurrentUser reads the authenticated user from the gin context.
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	u, ok := user.(*models.User)
	return u, ok
}

// GetCurrentUserID reads the authenticated user's id from the gin context.
func GetCurrentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(utils.ContextUserID)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}
