package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coinboard/coinboard/internal/domain/account"
	apperrors "github.com/coinboard/coinboard/pkg/errors"
)

const maxAvatarBytes = 5 << 20

// AccountHandler wires the HTTP transport to the account service.
type AccountHandler struct {
	svc    account.Service
	logger *slog.Logger
}

// NewAccountHandler constructs the root HTTP handler.
func NewAccountHandler(svc account.Service, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// Login exchanges credentials for a signed token, returned as the
// plain-text response body.
func (h *AccountHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, accountError(err))
		return
	}

	c.String(http.StatusOK, token)
}

// Register creates a new user and hands back the token in the
// x-auth-token header alongside the user summary body.
func (h *AccountHandler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, accountError(err))
		return
	}

	c.Header(authTokenHeader, resp.Token)
	c.Header("access-control-expose-headers", authTokenHeader)
	c.JSON(http.StatusOK, resp)
}

// Logout marks the user offline and revokes the presented token.
func (h *AccountHandler) Logout(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "Access denied. No token provided.", nil))
		return
	}

	message, err := h.svc.Logout(c.Request.Context(), claims, c.GetHeader(authTokenHeader))
	if err != nil {
		abortWithError(c, accountError(err))
		return
	}

	c.String(http.StatusOK, message)
}

// Profile returns the projected profile of the authenticated user.
func (h *AccountHandler) Profile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "Access denied. No token provided.", nil))
		return
	}

	profile, err := h.svc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, accountError(err))
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteAccount removes the authenticated user and revokes the token.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "Access denied. No token provided.", nil))
		return
	}

	message, err := h.svc.DeleteAccount(c.Request.Context(), claims, c.GetHeader(authTokenHeader))
	if err != nil {
		abortWithError(c, accountError(err))
		return
	}

	c.String(http.StatusOK, message)
}

type createPostRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// CreatePost appends a post to the authenticated user's list. The body
// must name author and text, but the stored author is always the
// authenticated username.
func (h *AccountHandler) CreatePost(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "Access denied. No token provided.", nil))
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if req.Author == "" || req.Text == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", `"author" and "text" must be supplied in the request body.`, nil))
		return
	}

	posts, err := h.svc.CreatePost(c.Request.Context(), claims, req.Text)
	if err != nil {
		abortWithError(c, accountError(err))
		return
	}

	c.JSON(http.StatusOK, posts)
}

// UploadProfilePicture stores a multipart image and records its
// reference on the user.
func (h *AccountHandler) UploadProfilePicture(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "Access denied. No token provided.", nil))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", `"image" must be supplied as a multipart file.`, err))
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "invalid_request", "image exceeds the size limit", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "storage_error", "failed to read image", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "storage_error", "failed to read image", err))
		return
	}

	ref, err := h.svc.SetProfilePicture(c.Request.Context(), claims, data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		abortWithError(c, accountError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"profilePicture": ref})
}

// accountError translates the service error taxonomy into HTTP terms.
func accountError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status, code = http.StatusBadRequest, "invalid_request"
	case apperrors.IsCode(err, "invalid_credentials"):
		status, code = http.StatusBadRequest, "invalid_credentials"
	case apperrors.IsCode(err, "username_exists"):
		status, code = http.StatusBadRequest, "username_exists"
	case apperrors.IsCode(err, "email_exists"):
		status, code = http.StatusBadRequest, "email_exists"
	case apperrors.IsCode(err, "invalid_token"):
		status, code = http.StatusBadRequest, "invalid_token"
	case apperrors.IsCode(err, "user_not_found"):
		status, code = http.StatusNotFound, "user_not_found"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}
