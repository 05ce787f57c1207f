package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"conectar-users/internal/apperror"
	"conectar-users/internal/oauth"
	"conectar-users/internal/service"
	resp "conectar-users/internal/transport/http/response"
)

const stateCookie = "oauth_state"

type AuthHandler struct {
	auth   *service.AuthService
	google *oauth.Google
}

func NewAuthHandler(auth *service.AuthService, google *oauth.Google) *AuthHandler {
	return &AuthHandler{auth: auth, google: google}
}

type registerIn struct {
	Name     string `json:"name"     binding:"required,max=64"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in registerIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	out, err := h.auth.Register(c.Request.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp.OK(out))
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in loginIn
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, err.Error()))
		return
	}
	out, err := h.auth.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

// GoogleRedirect sends the browser to the consent screen with a
// one-shot state cookie.
func (h *AuthHandler) GoogleRedirect(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(stateCookie, state, 300, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state, err := c.Cookie(stateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "invalid oauth state"))
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, resp.Error(resp.CodeBadRequest, "missing code"))
		return
	}

	profile, err := h.google.FetchProfile(c.Request.Context(), code)
	if err != nil {
		writeErr(c, apperror.Unauthorized("OAuth login failed"))
		return
	}
	out, err := h.auth.LoginWithOAuth(c.Request.Context(), service.OAuthProfile{
		Name:  profile.Name,
		Email: profile.Email,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(out))
}

func writeErr(c *gin.Context, err error) {
	c.JSON(apperror.StatusOf(err), resp.FromError(err))
}
