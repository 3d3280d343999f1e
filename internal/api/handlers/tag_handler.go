package handlers

import (
	"foodgram-backend/domain"
	"foodgram-backend/internal/api/presenters"
	"foodgram-backend/pkg/tag"

	"github.com/gofiber/fiber/v2"
)

type (
	TagHandler interface {
		GetTags(c *fiber.Ctx) error
		GetTag(c *fiber.Ctx) error
	}

	tagHandler struct {
		tagService tag.TagService
	}
)

func NewTagHandler(tagService tag.TagService) TagHandler {
	return &tagHandler{tagService: tagService}
}

func (h *tagHandler) GetTags(c *fiber.Ctx) error {
	res, err := h.tagService.GetTags(c.Context())
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, res)
}

func (h *tagHandler) GetTag(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrTagNotFound)
	}

	res, err := h.tagService.GetTagByID(c.Context(), id)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, res)
}
