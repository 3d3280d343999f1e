package recipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/pkg/ingredient"
	"foodgram-backend/pkg/relation"
	"foodgram-backend/pkg/shortlink"
	"foodgram-backend/pkg/tag"
	"foodgram-backend/pkg/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	RecipeService interface {
		GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]domain.RecipeResponse, int64, error)
		GetRecipeByID(ctx context.Context, id, viewerID uint) (domain.RecipeResponse, error)
		CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID uint) (domain.RecipeResponse, error)
		UpdateRecipe(ctx context.Context, id uint, req domain.UpdateRecipeRequest, authorID uint) (domain.RecipeResponse, error)
		DeleteRecipe(ctx context.Context, id, authorID uint) error
		GetShortLink(ctx context.Context, id uint) (domain.ShortLinkResponse, error)
		ResolveShortLink(ctx context.Context, code string) (string, error)
		AddFavorite(ctx context.Context, userID, recipeID uint) (domain.RecipeShortResponse, error)
		RemoveFavorite(ctx context.Context, userID, recipeID uint) error
		AddToCart(ctx context.Context, userID, recipeID uint) (domain.RecipeShortResponse, error)
		RemoveFromCart(ctx context.Context, userID, recipeID uint) error
		DownloadShoppingList(ctx context.Context, userID uint) (string, []byte, error)
	}

	recipeService struct {
		recipeRepository     RecipeRepository
		ingredientRepository ingredient.IngredientRepository
		tagRepository        tag.TagRepository
		userRepository       user.UserRepository
		favorites            relation.Repository[entities.Favorite]
		carts                relation.Repository[entities.ShoppingCart]
		subscriptions        relation.Repository[entities.Subscription]
		s3                   storage.AwsS3
	}
)

func NewRecipeService(
	recipeRepository RecipeRepository,
	ingredientRepository ingredient.IngredientRepository,
	tagRepository tag.TagRepository,
	userRepository user.UserRepository,
	favorites relation.Repository[entities.Favorite],
	carts relation.Repository[entities.ShoppingCart],
	subscriptions relation.Repository[entities.Subscription],
	s3 storage.AwsS3,
) RecipeService {
	return &recipeService{
		recipeRepository:     recipeRepository,
		ingredientRepository: ingredientRepository,
		tagRepository:        tagRepository,
		userRepository:       userRepository,
		favorites:            favorites,
		carts:                carts,
		subscriptions:        subscriptions,
		s3:                   s3,
	}
}

func (s *recipeService) GetRecipes(ctx context.Context, filter domain.RecipeFilter) ([]domain.RecipeResponse, int64, error) {
	recipes, count, err := s.recipeRepository.GetRecipes(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		resp, err := s.toRecipeResponse(ctx, &recipes[i], filter.RequestingUserID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, resp)
	}
	return result, count, nil
}

func (s *recipeService) GetRecipeByID(ctx context.Context, id, viewerID uint) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	return s.toRecipeResponse(ctx, recipe, viewerID)
}

func (s *recipeService) CreateRecipe(ctx context.Context, req domain.CreateRecipeRequest, authorID uint) (domain.RecipeResponse, error) {
	ingredients, tags, err := s.validateComposition(ctx, req.Ingredients, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	recipe := &entities.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    imageURL,
	}
	if err := s.recipeRepository.CreateRecipe(ctx, recipe, ingredients, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeByID(ctx, recipe.ID, authorID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id uint, req domain.UpdateRecipeRequest, authorID uint) (domain.RecipeResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeResponse{}, err
	}
	if recipe.AuthorID != authorID {
		return domain.RecipeResponse{}, domain.ErrUnauthorizedRecipeAccess
	}

	ingredients, tags, err := s.validateComposition(ctx, req.Ingredients, req.Tags)
	if err != nil {
		return domain.RecipeResponse{}, err
	}

	imageURL := recipe.ImageURL
	if req.Image != "" {
		imageURL, err = s.uploadImage(ctx, req.Image)
		if err != nil {
			return domain.RecipeResponse{}, err
		}
		if recipe.ImageURL != "" {
			_ = s.s3.DeleteFile(ctx, s.s3.KeyFromURL(recipe.ImageURL))
		}
	}

	updated := &entities.Recipe{
		ID:          recipe.ID,
		AuthorID:    recipe.AuthorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    imageURL,
		Timestamp:   recipe.Timestamp,
	}
	if err := s.recipeRepository.UpdateRecipe(ctx, updated, ingredients, tags); err != nil {
		return domain.RecipeResponse{}, err
	}

	return s.GetRecipeByID(ctx, recipe.ID, authorID)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id, authorID uint) error {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecipeNotFound
		}
		return err
	}
	if recipe.AuthorID != authorID {
		return domain.ErrUnauthorizedRecipeAccess
	}

	if err := s.recipeRepository.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	if recipe.ImageURL != "" {
		_ = s.s3.DeleteFile(ctx, s.s3.KeyFromURL(recipe.ImageURL))
	}
	return nil
}

func (s *recipeService) GetShortLink(ctx context.Context, id uint) (domain.ShortLinkResponse, error) {
	exists, err := s.recipeRepository.RecipeExists(ctx, id)
	if err != nil {
		return domain.ShortLinkResponse{}, err
	}
	if !exists {
		return domain.ShortLinkResponse{}, domain.ErrRecipeNotFound
	}

	code := shortlink.Encode(uint64(id))
	return domain.ShortLinkResponse{
		ShortLink: fmt.Sprintf("%s/s/%s", strings.TrimRight(utils.GetConfig("APP_URL"), "/"), code),
	}, nil
}

// ResolveShortLink maps a short code back to the recipe API URL. An
// undecodable code and a decodable code pointing at no recipe are the
// same thing to the caller: the link does not resolve.
func (s *recipeService) ResolveShortLink(ctx context.Context, code string) (string, error) {
	id, err := shortlink.Decode(code)
	if err != nil {
		return "", domain.ErrRecipeNotFound
	}

	exists, err := s.recipeRepository.RecipeExists(ctx, uint(id))
	if err != nil {
		return "", err
	}
	if !exists {
		return "", domain.ErrRecipeNotFound
	}

	return fmt.Sprintf("%s/api/recipes/%d/", strings.TrimRight(utils.GetConfig("APP_URL"), "/"), id), nil
}

func (s *recipeService) AddFavorite(ctx context.Context, userID, recipeID uint) (domain.RecipeShortResponse, error) {
	return s.addRelation(ctx, s.favorites, userID, recipeID, domain.ErrAlreadyFavorited)
}

func (s *recipeService) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return s.removeRelation(ctx, s.favorites, userID, recipeID, domain.ErrNotFavorited)
}

func (s *recipeService) AddToCart(ctx context.Context, userID, recipeID uint) (domain.RecipeShortResponse, error) {
	return s.addRelation(ctx, s.carts, userID, recipeID, domain.ErrAlreadyInCart)
}

func (s *recipeService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return s.removeRelation(ctx, s.carts, userID, recipeID, domain.ErrNotInCart)
}

func (s *recipeService) addRelation(ctx context.Context, repo interface {
	Add(ctx context.Context, subject, target uint) (bool, error)
}, userID, recipeID uint, conflictErr error) (domain.RecipeShortResponse, error) {
	recipe, err := s.recipeRepository.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecipeShortResponse{}, domain.ErrRecipeNotFound
		}
		return domain.RecipeShortResponse{}, err
	}

	created, err := repo.Add(ctx, userID, recipeID)
	if err != nil {
		return domain.RecipeShortResponse{}, err
	}
	if !created {
		return domain.RecipeShortResponse{}, conflictErr
	}

	return toRecipeShort(recipe), nil
}

func (s *recipeService) removeRelation(ctx context.Context, repo interface {
	Remove(ctx context.Context, subject, target uint) (bool, error)
}, userID, recipeID uint, conflictErr error) error {
	exists, err := s.recipeRepository.RecipeExists(ctx, recipeID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrRecipeNotFound
	}

	removed, err := repo.Remove(ctx, userID, recipeID)
	if err != nil {
		return err
	}
	if !removed {
		return conflictErr
	}
	return nil
}

// DownloadShoppingList renders the aggregated cart as a plain-text
// attachment body. An empty cart yields just the header.
func (s *recipeService) DownloadShoppingList(ctx context.Context, userID uint) (string, []byte, error) {
	owner, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	items, err := s.recipeRepository.AggregateCartIngredients(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("Shopping list:\n")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("\n- %s (%s) — %d", item.Name, item.MeasurementUnit, item.Total))
	}

	filename := fmt.Sprintf("%s_shopping_list.txt", owner.Username)
	return filename, []byte(b.String()), nil
}

func (s *recipeService) validateComposition(ctx context.Context, ingredients []domain.RecipeIngredientRequest, tagIDs []uint) ([]entities.RecipeIngredient, []entities.Tag, error) {
	if len(ingredients) == 0 {
		return nil, nil, domain.ErrIngredientsEmpty
	}
	if len(tagIDs) == 0 {
		return nil, nil, domain.ErrTagsEmpty
	}

	seenIngredients := make(map[uint]struct{}, len(ingredients))
	ingredientIDs := make([]uint, 0, len(ingredients))
	rows := make([]entities.RecipeIngredient, 0, len(ingredients))
	for _, item := range ingredients {
		if _, dup := seenIngredients[item.ID]; dup {
			return nil, nil, domain.ErrIngredientsDuplicate
		}
		seenIngredients[item.ID] = struct{}{}
		if item.Amount < 1 {
			return nil, nil, domain.ErrAmountNotPositive
		}
		ingredientIDs = append(ingredientIDs, item.ID)
		rows = append(rows, entities.RecipeIngredient{
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}

	known, err := s.ingredientRepository.CountByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}
	if known != int64(len(ingredientIDs)) {
		return nil, nil, domain.ErrIngredientUnknown
	}

	seenTags := make(map[uint]struct{}, len(tagIDs))
	for _, id := range tagIDs {
		if _, dup := seenTags[id]; dup {
			return nil, nil, domain.ErrTagsDuplicate
		}
		seenTags[id] = struct{}{}
	}

	tags, err := s.tagRepository.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, nil, domain.ErrTagUnknown
	}

	return rows, tags, nil
}

func (s *recipeService) uploadImage(ctx context.Context, data string) (string, error) {
	raw, contentType, ext, err := utils.DecodeImageDataURI(data)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("recipes/%s.%s", uuid.New().String(), ext)
	return s.s3.UploadFile(ctx, key, contentType, raw)
}

func (s *recipeService) toRecipeResponse(ctx context.Context, r *entities.Recipe, viewerID uint) (domain.RecipeResponse, error) {
	ingredients := make([]domain.RecipeIngredientResponse, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		resp := domain.RecipeIngredientResponse{
			ID:     ri.IngredientID,
			Amount: ri.Amount,
		}
		if ri.Ingredient != nil {
			resp.Name = ri.Ingredient.Name
			resp.MeasurementUnit = ri.Ingredient.MeasurementUnit
		}
		ingredients = append(ingredients, resp)
	}

	tags := make([]domain.TagResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, domain.TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}

	var author domain.UserResponse
	if r.Author != nil {
		author = domain.UserResponse{
			ID:        r.Author.ID,
			Username:  r.Author.Username,
			FirstName: r.Author.FirstName,
			LastName:  r.Author.LastName,
			Email:     r.Author.Email,
		}
		if r.Author.AvatarURL != "" {
			author.Avatar = &r.Author.AvatarURL
		}
		if viewerID != 0 && viewerID != r.Author.ID {
			subscribed, err := s.subscriptions.Exists(ctx, viewerID, r.Author.ID)
			if err != nil {
				return domain.RecipeResponse{}, err
			}
			author.IsSubscribed = subscribed
		}
	}

	isFavorited := false
	isInCart := false
	if viewerID != 0 {
		var err error
		if isFavorited, err = s.favorites.Exists(ctx, viewerID, r.ID); err != nil {
			return domain.RecipeResponse{}, err
		}
		if isInCart, err = s.carts.Exists(ctx, viewerID, r.ID); err != nil {
			return domain.RecipeResponse{}, err
		}
	}

	var image *string
	if r.ImageURL != "" {
		image = &r.ImageURL
	}

	return domain.RecipeResponse{
		ID:               r.ID,
		Name:             r.Name,
		Author:           author,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		Ingredients:      ingredients,
		Tags:             tags,
		Image:            image,
		IsFavorited:      isFavorited,
		IsInShoppingCart: isInCart,
	}, nil
}

func toRecipeShort(r *entities.Recipe) domain.RecipeShortResponse {
	var image *string
	if r.ImageURL != "" {
		image = &r.ImageURL
	}
	return domain.RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       image,
		CookingTime: r.CookingTime,
	}
}
