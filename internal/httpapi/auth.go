package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"appointment-booking-api/internal/model"
	"appointment-booking-api/internal/service"
)

type authHandler struct {
	accounts *service.Accounts
}

type signupBody struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *authHandler) signup(c *gin.Context) {
	var body signupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	_, err := h.accounts.Signup(c.Request.Context(), service.SignupRequest{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "User registered successfully!")
}

func (h *authHandler) login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	res, err := h.accounts.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
