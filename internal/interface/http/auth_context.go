package http

import (
	"github.com/gin-gonic/gin"

	"github.com/coinboard/coinboard/internal/domain/account"
)

const authClaimsKey = "auth_claims"

func setClaims(c *gin.Context, claims account.Claims) {
	c.Set(authClaimsKey, claims)
}

func getClaims(c *gin.Context) (account.Claims, bool) {
	value, ok := c.Get(authClaimsKey)
	if !ok {
		return account.Claims{}, false
	}
	claims, ok := value.(account.Claims)
	return claims, ok
}
