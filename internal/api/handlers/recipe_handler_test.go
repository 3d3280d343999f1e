package handlers

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"foodgram-backend/entities"
	"foodgram-backend/internal/utils"
	"foodgram-backend/pkg/ingredient"
	"foodgram-backend/pkg/recipe"
	"foodgram-backend/pkg/relation"
	"foodgram-backend/pkg/shortlink"
	"foodgram-backend/pkg/tag"
	"foodgram-backend/pkg/user"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newShortLinkApp(t *testing.T) (*fiber.App, uint) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.User{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
		&entities.Subscription{},
	))

	author := entities.User{Email: "chef@example.com", Username: "chef", Password: "hashed"}
	require.NoError(t, db.Create(&author).Error)
	tagRow := entities.Tag{Name: "Dinner", Slug: "dinner"}
	require.NoError(t, db.Create(&tagRow).Error)
	ingredientRow := entities.Ingredient{Name: "salt", MeasurementUnit: "g"}
	require.NoError(t, db.Create(&ingredientRow).Error)

	recipeRepository := recipe.NewRecipeRepository(db)
	seeded := &entities.Recipe{
		AuthorID:    author.ID,
		Name:        "soup",
		Text:        "steps",
		CookingTime: 15,
		ImageURL:    "https://cdn.example.com/soup.png",
	}
	require.NoError(t, recipeRepository.CreateRecipe(
		context.Background(),
		seeded,
		[]entities.RecipeIngredient{{IngredientID: ingredientRow.ID, Amount: 5}},
		[]entities.Tag{tagRow},
	))

	favorites := relation.NewRepository(db, "user_id", "recipe_id", func(subject, target uint) *entities.Favorite {
		return &entities.Favorite{UserID: subject, RecipeID: target}
	})
	carts := relation.NewRepository(db, "user_id", "recipe_id", func(subject, target uint) *entities.ShoppingCart {
		return &entities.ShoppingCart{UserID: subject, RecipeID: target}
	})
	subscriptions := relation.NewRepository(db, "user_id", "author_id", func(subject, target uint) *entities.Subscription {
		return &entities.Subscription{UserID: subject, AuthorID: target}
	})

	recipeService := recipe.NewRecipeService(
		recipeRepository,
		ingredient.NewIngredientRepository(db),
		tag.NewTagRepository(db),
		user.NewUserRepository(db),
		favorites,
		carts,
		subscriptions,
		nil,
	)

	utils.InitValidator()
	handler := NewRecipeHandler(recipeService, utils.Validate)

	app := fiber.New()
	app.Get("/s/:code", handler.ResolveShortLink)
	app.Get("/api/recipes/:id/get-link", handler.GetShortLink)
	return app, seeded.ID
}

func TestResolveShortLinkRedirects(t *testing.T) {
	app, recipeID := newShortLinkApp(t)

	code := shortlink.Encode(uint64(recipeID))
	resp, err := app.Test(httptest.NewRequest("GET", "/s/"+code, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), fmt.Sprintf("/api/recipes/%d/", recipeID))
}

func TestResolveShortLinkUnknownRecipe(t *testing.T) {
	app, _ := newShortLinkApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/s/zzz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestResolveShortLinkMalformedCode(t *testing.T) {
	app, _ := newShortLinkApp(t)

	for _, code := range []string{"ABC", "a-b", "%20"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/s/"+code, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "code %q must not resolve", code)
	}
}

func TestGetShortLinkUsesCanonicalCode(t *testing.T) {
	app, recipeID := newShortLinkApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/recipes/%d/get-link", recipeID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
