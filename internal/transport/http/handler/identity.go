package handler

import (
	"github.com/gin-gonic/gin"

	"docuchat/internal/transport/http/middleware"
)

// requestIdentity is the authenticated (username, role) pair every core call
// receives explicitly.
type requestIdentity struct {
	UserID   uint
	Username string
	Role     string
}

func identityFromContext(c *gin.Context) (requestIdentity, bool) {
	userIDAny, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		return requestIdentity{}, false
	}
	userID, ok := userIDAny.(uint)
	if !ok {
		return requestIdentity{}, false
	}

	username := c.GetString(middleware.ContextUsernameKey)
	role := c.GetString(middleware.ContextRoleKey)
	if username == "" || role == "" {
		return requestIdentity{}, false
	}

	return requestIdentity{UserID: userID, Username: username, Role: role}, true
}
