package user

import (
	"context"
	"testing"

	"foodgram-backend/domain"
	"foodgram-backend/entities"
	"foodgram-backend/pkg/jwt"
	"foodgram-backend/pkg/relation"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
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
		&entities.Recipe{},
		&entities.Subscription{},
	))
	return db
}

func newTestService(db *gorm.DB) UserService {
	subscriptions := relation.NewRepository(db, "user_id", "author_id", func(subject, target uint) *entities.Subscription {
		return &entities.Subscription{UserID: subject, AuthorID: target}
	})
	return NewUserService(NewUserRepository(db), subscriptions, jwt.NewJWTService(), nil)
}

func seedUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &entities.User{
		Email:    username + "@example.com",
		Username: username,
		Password: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestSubscribeToSelfRejectedBeforeStorage(t *testing.T) {
	db := newTestDB(t)
	service := newTestService(db)
	user := seedUser(t, db, "alice")

	_, err := service.Subscribe(context.Background(), user.ID, user.ID, 0)
	assert.ErrorIs(t, err, domain.ErrSelfSubscribe)

	var count int64
	require.NoError(t, db.Model(&entities.Subscription{}).Count(&count).Error)
	assert.EqualValues(t, 0, count, "self-subscribe must never reach storage")
}

func TestSubscribeTwiceConflicts(t *testing.T) {
	db := newTestDB(t)
	service := newTestService(db)
	follower := seedUser(t, db, "alice")
	author := seedUser(t, db, "bob")
	ctx := context.Background()

	resp, err := service.Subscribe(ctx, follower.ID, author.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, author.ID, resp.ID)
	assert.True(t, resp.IsSubscribed)

	_, err = service.Subscribe(ctx, follower.ID, author.ID, 0)
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)
}

func TestSubscribeUnknownAuthor(t *testing.T) {
	db := newTestDB(t)
	service := newTestService(db)
	follower := seedUser(t, db, "alice")

	_, err := service.Subscribe(context.Background(), follower.ID, 9999, 0)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUnsubscribeWithoutSubscription(t *testing.T) {
	db := newTestDB(t)
	service := newTestService(db)
	follower := seedUser(t, db, "alice")
	author := seedUser(t, db, "bob")

	err := service.Unsubscribe(context.Background(), follower.ID, author.ID)
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestSubscribeRecipesLimit(t *testing.T) {
	db := newTestDB(t)
	service := newTestService(db)
	follower := seedUser(t, db, "alice")
	author := seedUser(t, db, "bob")

	for _, name := range []string{"soup", "salad", "stew"} {
		require.NoError(t, db.Create(&entities.Recipe{
			AuthorID:    author.ID,
			Name:        name,
			Text:        "steps",
			CookingTime: 5,
			ImageURL:    "https://cdn.example.com/" + name + ".png",
		}).Error)
	}

	resp, err := service.Subscribe(context.Background(), follower.ID, author.ID, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Recipes, 2)
	assert.EqualValues(t, 3, resp.RecipesCount, "count covers all recipes, not the window")
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	service := newTestService(db)
	seedUser(t, db, "alice")

	_, err := service.Login(context.Background(), domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrCredentialsInvalid)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	service := newTestService(db)
	seedUser(t, db, "alice")

	_, err := service.Register(context.Background(), domain.RegisterRequest{
		Email:     "alice@example.com",
		Username:  "alice2",
		FirstName: "Alice",
		LastName:  "Smith",
		Password:  "secret123",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}
