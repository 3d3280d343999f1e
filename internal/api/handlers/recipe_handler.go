package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"foodgram-backend/domain"
	"foodgram-backend/internal/api/presenters"
	"foodgram-backend/pkg/recipe"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	RecipeHandler interface {
		GetRecipes(c *fiber.Ctx) error
		GetRecipe(c *fiber.Ctx) error
		CreateRecipe(c *fiber.Ctx) error
		UpdateRecipe(c *fiber.Ctx) error
		DeleteRecipe(c *fiber.Ctx) error
		GetShortLink(c *fiber.Ctx) error
		ResolveShortLink(c *fiber.Ctx) error
		AddFavorite(c *fiber.Ctx) error
		RemoveFavorite(c *fiber.Ctx) error
		AddToCart(c *fiber.Ctx) error
		RemoveFromCart(c *fiber.Ctx) error
		DownloadShoppingCart(c *fiber.Ctx) error
	}

	recipeHandler struct {
		recipeService recipe.RecipeService
		validator     *validator.Validate
	}
)

func NewRecipeHandler(recipeService recipe.RecipeService, validator *validator.Validate) RecipeHandler {
	return &recipeHandler{
		recipeService: recipeService,
		validator:     validator,
	}
}

func (h *recipeHandler) GetRecipes(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	filter := domain.RecipeFilter{
		RequestingUserID: requestUserID(c),
		Page:             page,
		Limit:            limit,
	}

	if author, err := strconv.ParseUint(c.Query("author"), 10, 64); err == nil {
		filter.AuthorID = uint(author)
	}
	// tags may repeat (?tags=a&tags=b) or arrive comma-separated
	for _, raw := range c.Context().QueryArgs().PeekMulti("tags") {
		for _, slug := range strings.Split(string(raw), ",") {
			if slug != "" {
				filter.TagSlugs = append(filter.TagSlugs, slug)
			}
		}
	}
	filter.OnlyFavorited = c.QueryBool("is_favorited", false)
	filter.OnlyInCart = c.QueryBool("is_in_shopping_cart", false)

	recipes, count, err := h.recipeService.GetRecipes(c.Context(), filter)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Paginated(c, count, page, limit, recipes)
}

func (h *recipeHandler) GetRecipe(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.GetRecipeByID(c.Context(), id, requestUserID(c))
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, res)
}

func (h *recipeHandler) CreateRecipe(c *fiber.Ctx) error {
	req := new(domain.CreateRecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.Errors(c, domain.ErrFailedBodyRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ValidationErrors(c, err)
	}

	res, err := h.recipeService.CreateRecipe(c.Context(), *req, requestUserID(c))
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusCreated, res)
}

func (h *recipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrRecipeNotFound)
	}

	req := new(domain.UpdateRecipeRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.Errors(c, domain.ErrFailedBodyRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ValidationErrors(c, err)
	}

	res, err := h.recipeService.UpdateRecipe(c.Context(), id, *req, requestUserID(c))
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, res)
}

func (h *recipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrRecipeNotFound)
	}

	if err := h.recipeService.DeleteRecipe(c.Context(), id, requestUserID(c)); err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.NoContent(c)
}

func (h *recipeHandler) GetShortLink(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.GetShortLink(c.Context(), id)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusOK, res)
}

func (h *recipeHandler) ResolveShortLink(c *fiber.Ctx) error {
	target, err := h.recipeService.ResolveShortLink(c.Context(), c.Params("code"))
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return c.Redirect(target, fiber.StatusFound)
}

func (h *recipeHandler) AddFavorite(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.AddFavorite(c.Context(), requestUserID(c), id)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusCreated, res)
}

func (h *recipeHandler) RemoveFavorite(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrRecipeNotFound)
	}

	if err := h.recipeService.RemoveFavorite(c.Context(), requestUserID(c), id); err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.NoContent(c)
}

func (h *recipeHandler) AddToCart(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrRecipeNotFound)
	}

	res, err := h.recipeService.AddToCart(c.Context(), requestUserID(c), id)
	if err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.Success(c, fiber.StatusCreated, res)
}

func (h *recipeHandler) RemoveFromCart(c *fiber.Ctx) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return presenters.DomainError(c, domain.ErrRecipeNotFound)
	}

	if err := h.recipeService.RemoveFromCart(c.Context(), requestUserID(c), id); err != nil {
		return presenters.DomainError(c, err)
	}
	return presenters.NoContent(c)
}

func (h *recipeHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	filename, body, err := h.recipeService.DownloadShoppingList(c.Context(), requestUserID(c))
	if err != nil {
		return presenters.DomainError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(body)
}
