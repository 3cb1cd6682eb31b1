package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vnfurniture/internal/middleware"
)

type credentials struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

type authData struct {
	Email string
}

func (h *Handler) LoginPage(c *gin.Context) {
	if middleware.Auth(c).User() != nil {
		middleware.Redirect(c, "/")
		return
	}
	h.render(c, http.StatusOK, "login", "Login", authData{})
}

func (h *Handler) Login(c *gin.Context) {
	var in credentials
	_ = c.ShouldBind(&in)

	if err := middleware.Auth(c).SignIn(c, in.Email, in.Password); err != nil {
		h.render(c, http.StatusUnauthorized, "login", "Login", authData{Email: in.Email})
		return
	}
	middleware.Redirect(c, "/")
}

func (h *Handler) SignupPage(c *gin.Context) {
	if middleware.Auth(c).User() != nil {
		middleware.Redirect(c, "/")
		return
	}
	h.render(c, http.StatusOK, "signup", "Sign Up", authData{})
}

func (h *Handler) Signup(c *gin.Context) {
	var in credentials
	_ = c.ShouldBind(&in)

	if err := middleware.Auth(c).SignUp(c, in.Email, in.Password); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "signup", "Sign Up", authData{Email: in.Email})
		return
	}
	middleware.Notifier(c).Success("Account created successfully")
	middleware.Redirect(c, "/")
}

func (h *Handler) Logout(c *gin.Context) {
	_ = middleware.Auth(c).SignOut(c)
	middleware.Redirect(c, "/")
}
