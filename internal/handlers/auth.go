package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// AuthHandler serves the customer and admin login flows and user profiles.
type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phone     flexString `json:"phoneNo"`
	Address1  string     `json:"address1"`
	Address2  string     `json:"address2"`
	Pincode   flexString `json:"pincode"`
	City      string     `json:"city"`
	State     string     `json:"state"`
}

func (r registerRequest) input() services.RegisterInput {
	return services.RegisterInput{
		Phone:     string(r.Phone),
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Address1:  r.Address1,
		Address2:  r.Address2,
		Pincode:   string(r.Pincode),
		City:      r.City,
		State:     r.State,
	}
}

type loginRequest struct {
	Phone flexString `json:"phoneNo"`
}

type validateRequest struct {
	Phone   flexString `json:"phoneNo"`
	OTP     flexString `json:"otp"`
	TempOTP flexString `json:"tempOtp"`
}

func (r validateRequest) code() string {
	if r.OTP != "" {
		return string(r.OTP)
	}
	return string(r.TempOTP)
}

// Register creates a customer and sends a code.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	receipt, err := h.auth.Register(c.UserContext(), req.input())
	if err != nil {
		return fromService(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "OTP sent to mobile number",
		"data":    receipt,
	})
}

// Login sends a fresh code to a registered phone.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	receipt, err := h.auth.Login(c.UserContext(), string(req.Phone))
	if err != nil {
		return fromService(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent to mobile number",
		"data":    receipt,
	})
}

// ValidateOTP exchanges a code for a session token.
func (h *AuthHandler) ValidateOTP(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.auth.ValidateOTP(c.UserContext(), string(req.Phone), req.code())
	if err != nil {
		return fromService(err)
	}
	return h.sessionResponse(c, session)
}

func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	receipt, err := h.auth.LoginAdmin(c.UserContext(), string(req.Phone))
	if err != nil {
		return fromService(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent to mobile number",
		"data":    receipt,
	})
}

func (h *AuthHandler) AdminValidateOTP(c *fiber.Ctx) error {
	var req validateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.auth.ValidateAdminOTP(c.UserContext(), string(req.Phone), req.code())
	if err != nil {
		return fromService(err)
	}
	return h.sessionResponse(c, session)
}

// AdminRegister creates or promotes an admin. Admin only.
func (h *AuthHandler) AdminRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.RegisterAdmin(c.UserContext(), req.input())
	if err != nil {
		return fromService(err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": user})
}

func (h *AuthHandler) sessionResponse(c *fiber.Ctx, session *services.Session) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Login Successful",
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
		"data":      session.User,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, found := middleware.CurrentUser(c)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	user, err := h.auth.Me(c.UserContext(), claims.UserID)
	if err != nil {
		return fromService(err)
	}
	return ok(c, user)
}

type updateUserRequest struct {
	FirstName *string     `json:"firstName"`
	LastName  *string     `json:"lastName"`
	Address1  *string     `json:"address1"`
	Address2  *string     `json:"address2"`
	Pincode   *flexString `json:"pincode"`
	City      *string     `json:"city"`
	State     *string     `json:"state"`
}

// UpdateUser edits a profile. Customers may only edit their own.
func (h *AuthHandler) UpdateUser(c *fiber.Ctx) error {
	claims, found := middleware.CurrentUser(c)
	if !found {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), claims, id, services.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address1:  req.Address1,
		Address2:  req.Address2,
		Pincode:   req.Pincode.ptr(),
		City:      req.City,
		State:     req.State,
	})
	if err != nil {
		return fromService(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User details have been updated",
		"data":    user,
	})
}

// ListUsers pages through every account. Admin only.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	users, total, err := h.auth.ListUsers(c.UserContext(), pg)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": users, "meta": pg.Meta(total)})
}
