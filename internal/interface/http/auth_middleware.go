package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coinboard/coinboard/internal/domain/account"
	apperrors "github.com/coinboard/coinboard/pkg/errors"
)

const authTokenHeader = "x-auth-token"

// authMiddleware verifies the x-auth-token header and attaches the
// decoded claims to the request context.
func authMiddleware(svc account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(authTokenHeader)
		if token == "" {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "Access denied. No token provided.", nil))
			return
		}
		claims, err := svc.ValidateToken(c.Request.Context(), token)
		if err != nil {
			if apperrors.IsCode(err, "invalid_token") {
				abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_token", "Invalid token.", err))
				return
			}
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", errMessage(err), err))
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// blacklistMiddleware rejects tokens that were revoked by a prior
// logout or account deletion, even if they are still within expiry.
func blacklistMiddleware(svc account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(authTokenHeader)
		revoked, err := svc.IsTokenRevoked(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_failed", errMessage(err), err))
			return
		}
		if revoked {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "token_revoked", "Access denied. Token has been revoked.", nil))
			return
		}
		c.Next()
	}
}
