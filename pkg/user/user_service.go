package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/internal/utils"
	"foodgram-backend/internal/utils/mailing"
	"foodgram-backend/internal/utils/storage"
	"foodgram-backend/pkg/jwt"
	"foodgram-backend/pkg/relation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		GetUsers(ctx context.Context, viewerID uint, page, limit int) ([]domain.UserResponse, int64, error)
		GetUserByID(ctx context.Context, id, viewerID uint) (domain.UserResponse, error)
		SetPassword(ctx context.Context, userID uint, req domain.SetPasswordRequest) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
		GetAvatar(ctx context.Context, userID uint) (*string, error)
		UpdateAvatar(ctx context.Context, userID uint, req domain.UpdateAvatarRequest) (domain.UpdateAvatarResponse, error)
		DeleteAvatar(ctx context.Context, userID uint) error
		Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (domain.SubscriptionResponse, error)
		Unsubscribe(ctx context.Context, userID, authorID uint) error
		GetSubscriptions(ctx context.Context, userID uint, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error)
	}

	userService struct {
		userRepository UserRepository
		subscriptions  relation.Repository[entities.Subscription]
		jwtService     jwt.JWTService
		s3             storage.AwsS3
	}
)

func NewUserService(
	userRepository UserRepository,
	subscriptions relation.Repository[entities.Subscription],
	jwtService jwt.JWTService,
	s3 storage.AwsS3,
) UserService {
	return &userService{
		userRepository: userRepository,
		subscriptions:  subscriptions,
		jwtService:     jwtService,
		s3:             s3,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	emailTaken, err := s.userRepository.EmailExists(ctx, req.Email)
	if err != nil {
		return domain.RegisterResponse{}, err
	}
	if emailTaken {
		return domain.RegisterResponse{}, domain.ErrEmailAlreadyExists
	}

	usernameTaken, err := s.userRepository.UsernameExists(ctx, req.Username)
	if err != nil {
		return domain.RegisterResponse{}, err
	}
	if usernameTaken {
		return domain.RegisterResponse{}, domain.ErrUsernameAlreadyExist
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	user := &entities.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hash),
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		return domain.RegisterResponse{}, err
	}

	return domain.RegisterResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrCredentialsInvalid
		}
		return domain.LoginResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return domain.LoginResponse{}, domain.ErrCredentialsInvalid
	}

	return domain.LoginResponse{AuthToken: s.jwtService.GenerateTokenUser(user.ID)}, nil
}

func (s *userService) GetUsers(ctx context.Context, viewerID uint, page, limit int) ([]domain.UserResponse, int64, error) {
	users, count, err := s.userRepository.GetUsers(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		resp, err := s.toUserResponse(ctx, &users[i], viewerID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, resp)
	}
	return result, count, nil
}

func (s *userService) GetUserByID(ctx context.Context, id, viewerID uint) (domain.UserResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserResponse{}, domain.ErrUserNotFound
		}
		return domain.UserResponse{}, err
	}
	return s.toUserResponse(ctx, user, viewerID)
}

func (s *userService) SetPassword(ctx context.Context, userID uint, req domain.SetPasswordRequest) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return domain.ErrPasswordCurrentWrong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenPasswordReset(user.Email, time.Hour)
	if err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Follow <a href=%q>this link</a> to reset your password. The link is valid for one hour.</p>",
		user.Username, resetLink,
	)
	return mailing.SendMail(user.Email, "Password reset", body)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	email, err := s.jwtService.ValidateTokenPasswordReset(req.Token)
	if err != nil {
		return err
	}

	user, err := s.userRepository.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hash)
	return s.userRepository.UpdateUser(ctx, user)
}

func (s *userService) GetAvatar(ctx context.Context, userID uint) (*string, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AvatarURL == "" {
		return nil, nil
	}
	avatar := user.AvatarURL
	return &avatar, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uint, req domain.UpdateAvatarRequest) (domain.UpdateAvatarResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return domain.UpdateAvatarResponse{}, err
	}

	raw, contentType, ext, err := utils.DecodeImageDataURI(req.Avatar)
	if err != nil {
		return domain.UpdateAvatarResponse{}, err
	}

	key := fmt.Sprintf("users/%s.%s", uuid.New().String(), ext)
	url, err := s.s3.UploadFile(ctx, key, contentType, raw)
	if err != nil {
		return domain.UpdateAvatarResponse{}, err
	}

	if user.AvatarURL != "" {
		// Old object becomes unreachable once the URL is replaced.
		_ = s.s3.DeleteFile(ctx, s.s3.KeyFromURL(user.AvatarURL))
	}

	user.AvatarURL = url
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return domain.UpdateAvatarResponse{}, err
	}
	return domain.UpdateAvatarResponse{Avatar: url}, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.AvatarURL != "" {
		_ = s.s3.DeleteFile(ctx, s.s3.KeyFromURL(user.AvatarURL))
		user.AvatarURL = ""
		return s.userRepository.UpdateUser(ctx, user)
	}
	return nil
}

// Subscribe enforces the self-subscription precondition before any
// storage access, then relies on the relation store's conditional
// insert for the at-most-one guarantee.
func (s *userService) Subscribe(ctx context.Context, userID, authorID uint, recipesLimit int) (domain.SubscriptionResponse, error) {
	if userID == authorID {
		return domain.SubscriptionResponse{}, domain.ErrSelfSubscribe
	}

	author, err := s.userRepository.GetUserWithRecipes(ctx, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SubscriptionResponse{}, domain.ErrUserNotFound
		}
		return domain.SubscriptionResponse{}, err
	}

	created, err := s.subscriptions.Add(ctx, userID, authorID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}
	if !created {
		return domain.SubscriptionResponse{}, domain.ErrAlreadySubscribed
	}

	return s.toSubscriptionResponse(ctx, author, recipesLimit)
}

func (s *userService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if userID == authorID {
		return domain.ErrSelfSubscribe
	}

	if _, err := s.userRepository.GetUserByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	removed, err := s.subscriptions.Remove(ctx, userID, authorID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotSubscribed
	}
	return nil
}

func (s *userService) GetSubscriptions(ctx context.Context, userID uint, page, limit, recipesLimit int) ([]domain.SubscriptionResponse, int64, error) {
	authors, count, err := s.userRepository.GetSubscribedAuthors(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		resp, err := s.toSubscriptionResponse(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		// The listing only ever contains subscribed authors.
		resp.IsSubscribed = true
		result = append(result, resp)
	}
	return result, count, nil
}

func (s *userService) toUserResponse(ctx context.Context, user *entities.User, viewerID uint) (domain.UserResponse, error) {
	isSubscribed := false
	if viewerID != 0 && viewerID != user.ID {
		var err error
		isSubscribed, err = s.subscriptions.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return domain.UserResponse{}, err
		}
	}

	var avatar *string
	if user.AvatarURL != "" {
		avatar = &user.AvatarURL
	}

	return domain.UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		IsSubscribed: isSubscribed,
		Avatar:       avatar,
	}, nil
}

func (s *userService) toSubscriptionResponse(ctx context.Context, author *entities.User, recipesLimit int) (domain.SubscriptionResponse, error) {
	recipesCount, err := s.userRepository.CountRecipesByAuthor(ctx, author.ID)
	if err != nil {
		return domain.SubscriptionResponse{}, err
	}

	recipes := author.Recipes
	if recipesLimit > 0 && len(recipes) > recipesLimit {
		recipes = recipes[:recipesLimit]
	}

	shorts := make([]domain.RecipeShortResponse, 0, len(recipes))
	for i := range recipes {
		r := recipes[i]
		var image *string
		if r.ImageURL != "" {
			image = &r.ImageURL
		}
		shorts = append(shorts, domain.RecipeShortResponse{
			ID:          r.ID,
			Name:        r.Name,
			Image:       image,
			CookingTime: r.CookingTime,
		})
	}

	var avatar *string
	if author.AvatarURL != "" {
		avatar = &author.AvatarURL
	}

	return domain.SubscriptionResponse{
		UserResponse: domain.UserResponse{
			ID:           author.ID,
			Username:     author.Username,
			FirstName:    author.FirstName,
			LastName:     author.LastName,
			Email:        author.Email,
			IsSubscribed: true,
			Avatar:       avatar,
		},
		Recipes:      shorts,
		RecipesCount: recipesCount,
	}, nil
}
