package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"payswiftly/internal/domain"
	"payswiftly/internal/middleware"
	"payswiftly/internal/service"
)

var vehicleTypes = []domain.VehicleType{
	domain.VehicleTypeBoda,
	domain.VehicleTypeTaxi,
	domain.VehicleTypeUber,
	domain.VehicleTypeBolt,
}

// AuthHandler handles the driver login, registration and lookup pages.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginForm is the login form.
type LoginForm struct {
	Phone    string `form:"phone" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// RegisterForm is the sign-up form.
type RegisterForm struct {
	FirstName       string `form:"first_name" binding:"required"`
	LastName        string `form:"last_name"`
	Email           string `form:"email" binding:"required,email"`
	Phone           string `form:"phone" binding:"required"`
	VehicleType     string `form:"vehicle_type" binding:"required,oneof=boda taxi uber bolt"`
	VehicleNumber   string `form:"vehicle_number" binding:"required"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required"`
}

// LookupForm is the driver ID form.
type LookupForm struct {
	DriverID string `form:"driver_id" binding:"required"`
}

func (h *AuthHandler) renderAuth(c *gin.Context, code int, mode string, login LoginForm, register RegisterForm, message string) {
	if register.VehicleType == "" {
		register.VehicleType = string(domain.VehicleTypeBoda)
	}
	c.HTML(code, "auth.html", gin.H{
		"Title":        "Driver account",
		"Mode":         mode,
		"Login":        login,
		"Register":     register,
		"VehicleTypes": vehicleTypes,
		"Error":        message,
	})
}

// ShowLogin handles GET /auth/login
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	h.renderAuth(c, http.StatusOK, "login", LoginForm{}, RegisterForm{}, "")
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderAuth(c, http.StatusBadRequest, "login", form, RegisterForm{}, bindingMessage(err))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), middleware.SessionFrom(c), domain.LoginRequest{
		Phone:    form.Phone,
		Password: form.Password,
	})
	if err != nil {
		_ = c.Error(err)
		form.Password = ""
		h.renderAuth(c, mapErrorToHTTPStatus(err), "login", form, RegisterForm{}, messageOr(err, "Login failed"))
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard/"+url.PathEscape(resp.DriverID))
}

// ShowRegister handles GET /auth/register
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.renderAuth(c, http.StatusOK, "register", LoginForm{}, RegisterForm{}, "")
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderAuth(c, http.StatusBadRequest, "register", LoginForm{}, form, bindingMessage(err))
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), service.Registration{
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Phone:           form.Phone,
		Email:           form.Email,
		VehicleType:     domain.VehicleType(form.VehicleType),
		VehicleNumber:   form.VehicleNumber,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		_ = c.Error(err)
		form.Password, form.ConfirmPassword = "", ""
		h.renderAuth(c, mapErrorToHTTPStatus(err), "register", LoginForm{}, form, messageOr(err, "Registration failed"))
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard/"+url.PathEscape(resp.DriverID))
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.SessionFrom(c)); err != nil {
		renderError(c, err, "/")
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowLookup handles GET /login
func (h *AuthHandler) ShowLookup(c *gin.Context) {
	c.HTML(http.StatusOK, "lookup.html", gin.H{"Title": "Pay a driver"})
}

// Lookup handles POST /login
func (h *AuthHandler) Lookup(c *gin.Context) {
	var form LookupForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "lookup.html", gin.H{"Title": "Pay a driver", "Error": bindingMessage(err)})
		return
	}

	driver, err := h.authService.LookupDriver(c.Request.Context(), form.DriverID)
	if err != nil {
		_ = c.Error(err)
		c.HTML(mapErrorToHTTPStatus(err), "lookup.html", gin.H{
			"Title":    "Pay a driver",
			"DriverID": form.DriverID,
			"Error":    service.ErrDriverNotFound.Error(),
		})
		return
	}

	c.Redirect(http.StatusSeeOther, "/pay/"+url.PathEscape(driver.ID))
}

func messageOr(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
