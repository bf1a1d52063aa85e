package ginserver

import (
	"context"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/dto"
	authsvc "flatfinder/internal/app/services/auth"
	domainuser "flatfinder/internal/domain/user"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

// AuthService is implemented by *auth.Service.
type AuthService interface {
	TokenResolver
	Register(ctx context.Context, params authsvc.RegisterParams) (*authsvc.AuthResult, error)
	Login(ctx context.Context, params authsvc.LoginParams) (*authsvc.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, principal actor.Actor) (*domainuser.User, error)
}

type AuthHandler struct {
	Service AuthService
	Logger  *slog.Logger
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r registerRequest) params() authsvc.RegisterParams {
	return authsvc.RegisterParams{Email: r.Email, Name: r.Name, Phone: r.Phone, Password: r.Password, Role: r.Role}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register answers 201 with the new account and a live session token.
func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Service.Register(c.Request.Context(), req.params())
	h.session(c, http.StatusCreated, res, err)
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{Email: req.Email, Password: req.Password})
	h.session(c, http.StatusOK, res, err)
}

func (h AuthHandler) session(c *gin.Context, status int, res *authsvc.AuthResult, err error) {
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(status, dto.NewAuthResponse(res.User, res.Token))
}

// Logout prefers the token the middleware resolved; a raw header is used when
// the session already expired.
func (h AuthHandler) Logout(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if p, ok := currentPrincipal(c); ok {
		token = p.Token
	}
	if err := h.Service.Logout(c.Request.Context(), token); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AuthHandler) Me(c *gin.Context) {
	user, err := h.Service.Me(c.Request.Context(), currentActor(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

var _ AuthHTTP = AuthHandler{}
