package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"compilex/dto"
	"compilex/services"
)

type UserHandler struct {
	Service *services.AuthService
}

// Register godoc
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body body dto.RegisterReq true "credentials"
// @Success      200 {object} dto.AuthResp
// @Router       /user/register [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var body dto.RegisterReq
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.AuthResp{
			Message: "name, email and password are required",
		})
	}

	token, err := h.Service.Register(c.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.JSON(dto.AuthResp{Message: "User already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.AuthResp{Message: err.Error()})
	}
	return c.JSON(dto.AuthResp{Success: true, Token: token})
}

// Login godoc
// @Summary      Log in
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body body dto.LoginReq true "credentials"
// @Success      200 {object} dto.AuthResp
// @Router       /user/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var body dto.LoginReq
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	token, err := h.Service.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.JSON(dto.AuthResp{Message: "Invalid email or password"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.AuthResp{Message: err.Error()})
	}
	return c.JSON(dto.AuthResp{Success: true, Token: token})
}

// Me godoc
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /user/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	uid, err := actorID(c)
	if err != nil {
		return err
	}
	user, err := h.Service.Me(c.Context(), uid)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "user": user})
}
