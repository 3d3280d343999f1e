package handlers

import (
	"strconv"

	"foodgram-backend/domain"
	"foodgram-backend/internal/api/presenters"
	"foodgram-backend/pkg/user"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	UserHandler interface {
		Register(c *fiber.Ctx) error
		Login(c *fiber.Ctx) error
		Logout(c *fiber.Ctx) error
		GetUsers(c *fiber.Ctx) error
		GetUser(c *fiber.Ctx) error
		Me(c *fiber.Ctx) error
		SetPassword(c *fiber.Ctx) error
		ForgotPassword(c *fiber.Ctx) error
		ResetPassword(c *fiber.Ctx) error
		GetAvatar(c *fiber.Ctx) error
		UpdateAvatar(c *fiber.Ctx) error
		DeleteAvatar(c *fiber.Ctx) error
		Subscribe(c *fiber.Ctx) error
		Unsubscribe(c *fiber.Ctx) error
		GetSubscriptions(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		validator   *validator.Validate
	}
)

func NewUserHandler(userService user.UserService, validator *validator.Validate) UserHandler {
	return &userHandler{
		userService: userService,
		validator:   validator,
	}
}

// requestUserID reads the authenticated caller set by the auth
// middleware; zero means anonymous.
func requestUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("user_id").(uint)
	return userID
}

func parseIDParam(c *fiber.Ctx, name string) (uint, bool) {
	raw, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || raw == 0 {
		return 0, false
	}
	return uint(raw), true
}

func parsePagination(c *fiber.Ctx) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit", "6"))
	if err != nil || limit < 1 {
		limit = 6
	}
	return page, limit
}

func (h *userHandler) Register(c *fiber.Ctx) error {
	req := new(domain.RegisterRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.Errors(c, domain.ErrFailedBodyRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ValidationErrors(c, err)
	}

	res, err := h.userService.Register(c.Context(), *req)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusCreated, res)
}

func (h *userHandler) Login(c *fiber.Ctx) error {
	req := new(domain.LoginRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.Errors(c, domain.ErrFailedBodyRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ValidationErrors(c, err)
	}

	res, err := h.userService.Login(c.Context(), *req)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, res)
}

// Logout is a no-op on the server: tokens are stateless and simply
// expire. The endpoint exists so clients can drop theirs uniformly.
func (h *userHandler) Logout(c *fiber.Ctx) error {
	return presenters.NoContent(c)
}

func (h *userHandler) GetUsers(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	users, count, err := h.userService.GetUsers(c.Context(), requestUserID(c), page, limit)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Paginated(c, count, page, limit, users)
}

func (h *userHandler) GetUser(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrUserNotFound)
	}

	res, err := h.userService.GetUserByID(c.Context(), id, requestUserID(c))
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, res)
}

func (h *userHandler) Me(c *fiber.Ctx) error {
	userID := requestUserID(c)
	res, err := h.userService.GetUserByID(c.Context(), userID, userID)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, res)
}

func (h *userHandler) SetPassword(c *fiber.Ctx) error {
	req := new(domain.SetPasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.Errors(c, domain.ErrFailedBodyRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ValidationErrors(c, err)
	}

	if err := h.userService.SetPassword(c.Context(), requestUserID(c), *req); err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.NoContent(c)
}

func (h *userHandler) ForgotPassword(c *fiber.Ctx) error {
	req := new(domain.ForgotPasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.Errors(c, domain.ErrFailedBodyRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ValidationErrors(c, err)
	}

	if err := h.userService.ForgotPassword(c.Context(), *req); err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.NoContent(c)
}

func (h *userHandler) ResetPassword(c *fiber.Ctx) error {
	req := new(domain.ResetPasswordRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.Errors(c, domain.ErrFailedBodyRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ValidationErrors(c, err)
	}

	if err := h.userService.ResetPassword(c.Context(), *req); err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.NoContent(c)
}

func (h *userHandler) GetAvatar(c *fiber.Ctx) error {
	avatar, err := h.userService.GetAvatar(c.Context(), requestUserID(c))
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, fiber.Map{"avatar": avatar})
}

func (h *userHandler) UpdateAvatar(c *fiber.Ctx) error {
	req := new(domain.UpdateAvatarRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.Errors(c, domain.ErrFailedBodyRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ValidationErrors(c, err)
	}

	res, err := h.userService.UpdateAvatar(c.Context(), requestUserID(c), *req)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, res)
}

func (h *userHandler) DeleteAvatar(c *fiber.Ctx) error {
	if err := h.userService.DeleteAvatar(c.Context(), requestUserID(c)); err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.NoContent(c)
}

func (h *userHandler) Subscribe(c *fiber.Ctx) error {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrUserNotFound)
	}
	recipesLimit, _ := strconv.Atoi(c.Query("recipes_limit", "0"))

	res, err := h.userService.Subscribe(c.Context(), requestUserID(c), authorID, recipesLimit)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusCreated, res)
}

func (h *userHandler) Unsubscribe(c *fiber.Ctx) error {
	authorID, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrUserNotFound)
	}

	if err := h.userService.Unsubscribe(c.Context(), requestUserID(c), authorID); err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.NoContent(c)
}

func (h *userHandler) GetSubscriptions(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	recipesLimit, _ := strconv.Atoi(c.Query("recipes_limit", "0"))

	subs, count, err := h.userService.GetSubscriptions(c.Context(), requestUserID(c), page, limit, recipesLimit)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Paginated(c, count, page, limit, subs)
}
