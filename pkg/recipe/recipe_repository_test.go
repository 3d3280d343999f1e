package recipe

import (
	"context"
	"fmt"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

type fixtures struct {
	author      entities.User
	tags        []entities.Tag
	ingredients []entities.Ingredient
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()

	f := fixtures{
		author: entities.User{
			Email:    "chef@example.com",
			Username: "chef",
			Password: "hashed",
		},
		tags: []entities.Tag{
			{Name: "Breakfast", Slug: "breakfast"},
			{Name: "Dinner", Slug: "dinner"},
		},
		ingredients: []entities.Ingredient{
			{Name: "flour", MeasurementUnit: "g"},
			{Name: "milk", MeasurementUnit: "ml"},
			{Name: "sugar", MeasurementUnit: "g"},
		},
	}
	require.NoError(t, db.Create(&f.author).Error)
	require.NoError(t, db.Create(&f.tags).Error)
	require.NoError(t, db.Create(&f.ingredients).Error)
	return f
}

func createRecipe(t *testing.T, repo RecipeRepository, f fixtures, name string, amounts map[uint]uint) *entities.Recipe {
	t.Helper()

	recipe := &entities.Recipe{
		AuthorID:    f.author.ID,
		Name:        name,
		Text:        "steps",
		CookingTime: 10,
		ImageURL:    fmt.Sprintf("https://cdn.example.com/recipes/%s.png", name),
	}
	rows := make([]entities.RecipeIngredient, 0, len(amounts))
	for id, amount := range amounts {
		rows = append(rows, entities.RecipeIngredient{IngredientID: id, Amount: amount})
	}
	require.NoError(t, repo.CreateRecipe(context.Background(), recipe, rows, f.tags[:1]))
	return recipe
}

func TestCreateRecipePersistsComposition(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	f := seedFixtures(t, db)

	recipe := createRecipe(t, repo, f, "pancakes", map[uint]uint{
		f.ingredients[0].ID: 200,
		f.ingredients[1].ID: 300,
	})

	got, err := repo.GetRecipeByID(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "pancakes", got.Name)
	require.NotNil(t, got.Author)
	assert.Equal(t, "chef", got.Author.Username)
	assert.Len(t, got.Ingredients, 2)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "breakfast", got.Tags[0].Slug)
}

func TestUpdateRecipeReplacesIngredients(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	f := seedFixtures(t, db)
	ctx := context.Background()

	recipe := createRecipe(t, repo, f, "porridge", map[uint]uint{
		f.ingredients[0].ID: 2,
	})

	recipe.Name = "sweet porridge"
	err := repo.UpdateRecipe(ctx, recipe,
		[]entities.RecipeIngredient{{IngredientID: f.ingredients[2].ID, Amount: 3}},
		f.tags[1:2],
	)
	require.NoError(t, err)

	got, err := repo.GetRecipeByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "sweet porridge", got.Name)
	require.Len(t, got.Ingredients, 1, "old ingredient rows must be gone")
	assert.Equal(t, f.ingredients[2].ID, got.Ingredients[0].IngredientID)
	assert.EqualValues(t, 3, got.Ingredients[0].Amount)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "dinner", got.Tags[0].Slug)

	var orphans int64
	require.NoError(t, db.Model(&entities.RecipeIngredient{}).
		Where("recipe_id = ? AND ingredient_id = ?", recipe.ID, f.ingredients[0].ID).
		Count(&orphans).Error)
	assert.EqualValues(t, 0, orphans)
}

func TestDeleteRecipeRemovesRelations(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	f := seedFixtures(t, db)
	ctx := context.Background()

	recipe := createRecipe(t, repo, f, "soup", map[uint]uint{f.ingredients[1].ID: 500})
	require.NoError(t, db.Create(&entities.Favorite{UserID: f.author.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, db.Create(&entities.ShoppingCart{UserID: f.author.ID, RecipeID: recipe.ID}).Error)

	require.NoError(t, repo.DeleteRecipe(ctx, recipe.ID))

	_, err := repo.GetRecipeByID(ctx, recipe.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	for _, model := range []any{
		&entities.RecipeIngredient{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Where("recipe_id = ?", recipe.ID).Count(&count).Error)
		assert.EqualValues(t, 0, count)
	}
}

func TestGetRecipesFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	f := seedFixtures(t, db)
	ctx := context.Background()

	createRecipe(t, repo, f, "omelette", map[uint]uint{f.ingredients[1].ID: 100})
	second := createRecipe(t, repo, f, "toast", map[uint]uint{f.ingredients[0].ID: 50})
	require.NoError(t, db.Create(&entities.Favorite{UserID: f.author.ID, RecipeID: second.ID}).Error)

	recipes, count, err := repo.GetRecipes(ctx, domain.RecipeFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	require.Len(t, recipes, 2)
	assert.Equal(t, "toast", recipes[0].Name, "newest first")

	recipes, count, err = repo.GetRecipes(ctx, domain.RecipeFilter{
		OnlyFavorited:    true,
		RequestingUserID: f.author.ID,
		Page:             1,
		Limit:            10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	require.Len(t, recipes, 1)
	assert.Equal(t, second.ID, recipes[0].ID)

	recipes, count, err = repo.GetRecipes(ctx, domain.RecipeFilter{
		TagSlugs: []string{"breakfast"},
		Page:     1,
		Limit:    1,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count, "count ignores pagination")
	assert.Len(t, recipes, 1)
}

func TestAggregateCartIngredients(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	f := seedFixtures(t, db)
	ctx := context.Background()

	pancakes := createRecipe(t, repo, f, "pancakes", map[uint]uint{
		f.ingredients[0].ID: 100,
		f.ingredients[1].ID: 250,
	})
	cookies := createRecipe(t, repo, f, "cookies", map[uint]uint{
		f.ingredients[0].ID: 50,
		f.ingredients[2].ID: 30,
	})
	require.NoError(t, db.Create(&entities.ShoppingCart{UserID: f.author.ID, RecipeID: pancakes.ID}).Error)
	require.NoError(t, db.Create(&entities.ShoppingCart{UserID: f.author.ID, RecipeID: cookies.ID}).Error)

	items, err := repo.AggregateCartIngredients(ctx, f.author.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Total: 150},
		{Name: "milk", MeasurementUnit: "ml", Total: 250},
		{Name: "sugar", MeasurementUnit: "g", Total: 30},
	}, items)
}

func TestAggregateCartIngredientsEmptyCart(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	f := seedFixtures(t, db)

	items, err := repo.AggregateCartIngredients(context.Background(), f.author.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAggregateCartIgnoresOtherUsers(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	f := seedFixtures(t, db)
	ctx := context.Background()

	other := entities.User{Email: "other@example.com", Username: "other", Password: "hashed"}
	require.NoError(t, db.Create(&other).Error)

	recipe := createRecipe(t, repo, f, "pie", map[uint]uint{f.ingredients[0].ID: 400})
	require.NoError(t, db.Create(&entities.ShoppingCart{UserID: other.ID, RecipeID: recipe.ID}).Error)

	items, err := repo.AggregateCartIngredients(ctx, f.author.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
