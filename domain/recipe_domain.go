package domain

import "errors"

var (
	MessageSuccessGetRecipes    = "success get recipes"
	MessageSuccessGetRecipe     = "success get recipe"
	MessageSuccessCreateRecipe  = "recipe created successfully"
	MessageSuccessUpdateRecipe  = "recipe updated successfully"
	MessageSuccessDeleteRecipe  = "recipe deleted successfully"
	MessageSuccessGetShortLink  = "success get short link"

	MessageFailedGetRecipes   = "failed to get recipes"
	MessageFailedCreateRecipe = "failed to create recipe"
	MessageFailedUpdateRecipe = "failed to update recipe"
	MessageFailedDeleteRecipe = "failed to delete recipe"

	ErrRecipeNotFound           = errors.New("recipe not found")
	ErrUnauthorizedRecipeAccess = errors.New("only the author can modify this recipe")

	ErrIngredientsEmpty     = errors.New("recipe must contain at least one ingredient")
	ErrIngredientsDuplicate = errors.New("ingredients must not repeat")
	ErrIngredientUnknown    = errors.New("ingredient with this id does not exist")
	ErrAmountNotPositive    = errors.New("ingredient amount must be at least 1")
	ErrTagsEmpty            = errors.New("recipe must contain at least one tag")
	ErrTagsDuplicate        = errors.New("tags must not repeat")
	ErrTagUnknown           = errors.New("tag with this id does not exist")

	ErrAlreadyFavorited = errors.New("recipe is already in favorites")
	ErrNotFavorited     = errors.New("recipe is not in favorites")
	ErrAlreadyInCart    = errors.New("recipe is already in the shopping cart")
	ErrNotInCart        = errors.New("recipe is not in the shopping cart")
)

type (
	RecipeIngredientRequest struct {
		ID     uint `json:"id" validate:"required"`
		Amount uint `json:"amount" validate:"required,min=1"`
	}

	CreateRecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=256"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime uint                      `json:"cooking_time" validate:"required,min=1"`
		Image       string                    `json:"image" validate:"required"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,dive"`
		Tags        []uint                    `json:"tags" validate:"required"`
	}

	// UpdateRecipeRequest carries the full replacement state: the
	// resulting ingredient and tag sets equal exactly what is sent.
	UpdateRecipeRequest struct {
		Name        string                    `json:"name" validate:"required,max=256"`
		Text        string                    `json:"text" validate:"required"`
		CookingTime uint                      `json:"cooking_time" validate:"required,min=1"`
		Image       string                    `json:"image,omitempty"`
		Ingredients []RecipeIngredientRequest `json:"ingredients" validate:"required,dive"`
		Tags        []uint                    `json:"tags" validate:"required"`
	}

	RecipeFilter struct {
		AuthorID         uint
		TagSlugs         []string
		OnlyFavorited    bool
		OnlyInCart       bool
		RequestingUserID uint
		Page             int
		Limit            int
	}

	RecipeIngredientResponse struct {
		ID              uint   `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          uint   `json:"amount"`
	}

	RecipeResponse struct {
		ID               uint                       `json:"id"`
		Name             string                     `json:"name"`
		Author           UserResponse               `json:"author"`
		Text             string                     `json:"text"`
		CookingTime      uint                       `json:"cooking_time"`
		Ingredients      []RecipeIngredientResponse `json:"ingredients"`
		Tags             []TagResponse              `json:"tags"`
		Image            *string                    `json:"image"`
		IsFavorited      bool                       `json:"is_favorited"`
		IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	}

	RecipeShortResponse struct {
		ID          uint    `json:"id"`
		Name        string  `json:"name"`
		Image       *string `json:"image"`
		CookingTime uint    `json:"cooking_time"`
	}

	ShortLinkResponse struct {
		ShortLink string `json:"short-link"`
	}

	// ShoppingListItem is one aggregated line of the downloadable
	// shopping list: all cart recipes grouped by ingredient natural
	// key with amounts summed.
	ShoppingListItem struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Total           uint   `json:"total"`
	}
)
