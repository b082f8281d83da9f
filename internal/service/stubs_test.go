package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"picstream/internal/models"

	"github.com/stretchr/testify/require"
)

// Function-field stubs for the repository interfaces. Each test overrides
// only the calls it cares about.

type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	createFn         func(context.Context, *models.User) error
	updateFn         func(context.Context, *models.User) error
	deleteFn         func(context.Context, uint) error
	searchByPrefixFn func(context.Context, string, int) ([]models.BasicInfo, error)
	batchBasicInfoFn func(context.Context, []uint) ([]models.BasicInfo, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]models.BasicInfo, error) {
	return s.searchByPrefixFn(ctx, prefix, limit)
}
func (s *userRepoStub) BatchBasicInfo(ctx context.Context, ids []uint) ([]models.BasicInfo, error) {
	return s.batchBasicInfoFn(ctx, ids)
}
func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:        func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn:  func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:         func(_ context.Context, _ *models.User) error { return nil },
		updateFn:         func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:         func(_ context.Context, _ uint) error { return nil },
		searchByPrefixFn: func(_ context.Context, _ string, _ int) ([]models.BasicInfo, error) { return nil, nil },
		batchBasicInfoFn: func(_ context.Context, _ []uint) ([]models.BasicInfo, error) { return nil, nil },
	}
}

type followRepoStub struct {
	followFn           func(context.Context, uint, uint) error
	unfollowFn         func(context.Context, uint, uint) error
	isFollowingFn      func(context.Context, uint, uint) (bool, error)
	followersFn        func(context.Context, uint) ([]models.BasicInfo, error)
	followingFn        func(context.Context, uint) ([]models.BasicInfo, error)
	followingIDsFn     func(context.Context, uint) ([]uint, error)
	deleteAllForUserFn func(context.Context, uint) error
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followeeID uint) error {
	return s.followFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.unfollowFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]models.BasicInfo, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]models.BasicInfo, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followingIDsFn(ctx, userID)
}
func (s *followRepoStub) DeleteAllForUser(ctx context.Context, userID uint) error {
	return s.deleteAllForUserFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:           func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:         func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn:      func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followersFn:        func(_ context.Context, _ uint) ([]models.BasicInfo, error) { return nil, nil },
		followingFn:        func(_ context.Context, _ uint) ([]models.BasicInfo, error) { return nil, nil },
		followingIDsFn:     func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		deleteAllForUserFn: func(_ context.Context, _ uint) error { return nil },
	}
}

type postRepoStub struct {
	createFn               func(context.Context, *models.Post) error
	getByIDFn              func(context.Context, uint, uint) (*models.Post, error)
	getByCreatorFn         func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	feedFn                 func(context.Context, []uint, int, uint) ([]*models.Post, error)
	exploreFn              func(context.Context, uint, int, int) ([]*models.Post, error)
	deleteFn               func(context.Context, uint) error
	likeFn                 func(context.Context, uint, uint) error
	unlikeFn               func(context.Context, uint, uint) error
	saveFn                 func(context.Context, uint, uint) error
	unsaveFn               func(context.Context, uint, uint) error
	likerIDsFn             func(context.Context, uint) ([]uint, error)
	savedPostsFn           func(context.Context, uint, int, int) ([]*models.Post, error)
	imageURLsByCreatorFn   func(context.Context, uint) ([]string, error)
	deleteAllByCreatorFn   func(context.Context, uint) error
	deleteAllLikesByUserFn func(context.Context, uint) error
	deleteAllSavesByUserFn func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByCreator(ctx context.Context, creatorID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByCreatorFn(ctx, creatorID, limit, offset, currentUserID)
}
func (s *postRepoStub) Feed(ctx context.Context, creatorIDs []uint, limit int, currentUserID uint) ([]*models.Post, error) {
	return s.feedFn(ctx, creatorIDs, limit, currentUserID)
}
func (s *postRepoStub) Explore(ctx context.Context, excludeUserID uint, limit, offset int) ([]*models.Post, error) {
	return s.exploreFn(ctx, excludeUserID, limit, offset)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) Save(ctx context.Context, userID, postID uint) error {
	return s.saveFn(ctx, userID, postID)
}
func (s *postRepoStub) Unsave(ctx context.Context, userID, postID uint) error {
	return s.unsaveFn(ctx, userID, postID)
}
func (s *postRepoStub) LikerIDs(ctx context.Context, postID uint) ([]uint, error) {
	return s.likerIDsFn(ctx, postID)
}
func (s *postRepoStub) SavedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.savedPostsFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) ImageURLsByCreator(ctx context.Context, creatorID uint) ([]string, error) {
	return s.imageURLsByCreatorFn(ctx, creatorID)
}
func (s *postRepoStub) DeleteAllByCreator(ctx context.Context, creatorID uint) error {
	return s.deleteAllByCreatorFn(ctx, creatorID)
}
func (s *postRepoStub) DeleteAllLikesByUser(ctx context.Context, userID uint) error {
	return s.deleteAllLikesByUserFn(ctx, userID)
}
func (s *postRepoStub) DeleteAllSavesByUser(ctx context.Context, userID uint) error {
	return s.deleteAllSavesByUserFn(ctx, userID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getByCreatorFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		feedFn:                 func(_ context.Context, _ []uint, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		exploreFn:              func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		deleteFn:               func(_ context.Context, _ uint) error { return nil },
		likeFn:                 func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:               func(_ context.Context, _, _ uint) error { return nil },
		saveFn:                 func(_ context.Context, _, _ uint) error { return nil },
		unsaveFn:               func(_ context.Context, _, _ uint) error { return nil },
		likerIDsFn:             func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		savedPostsFn:           func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		imageURLsByCreatorFn:   func(_ context.Context, _ uint) ([]string, error) { return nil, nil },
		deleteAllByCreatorFn:   func(_ context.Context, _ uint) error { return nil },
		deleteAllLikesByUserFn: func(_ context.Context, _ uint) error { return nil },
		deleteAllSavesByUserFn: func(_ context.Context, _ uint) error { return nil },
	}
}

type commentRepoStub struct {
	createFn          func(context.Context, *models.Comment) error
	getByIDFn         func(context.Context, uint) (*models.Comment, error)
	listByPostFn      func(context.Context, uint) ([]*models.Comment, error)
	deleteFn          func(context.Context, uint) error
	deleteAllByUserFn func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *commentRepoStub) DeleteAllByUser(ctx context.Context, userID uint) error {
	return s.deleteAllByUserFn(ctx, userID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:          func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:         func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn:      func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:          func(_ context.Context, _ uint) error { return nil },
		deleteAllByUserFn: func(_ context.Context, _ uint) error { return nil },
	}
}

type storeStub struct {
	uploadFn     func(context.Context, string, io.Reader, int64, string) (string, error)
	deleteFn     func(context.Context, string) error
	keyFromURLFn func(string) (string, error)
}

func (s *storeStub) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.uploadFn(ctx, key, reader, size, contentType)
}
func (s *storeStub) Delete(ctx context.Context, key string) error {
	return s.deleteFn(ctx, key)
}
func (s *storeStub) KeyFromURL(rawURL string) (string, error) {
	return s.keyFromURLFn(rawURL)
}

func noopStore() *storeStub {
	return &storeStub{
		uploadFn: func(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
			return "http://localhost:9000/post-images/" + key, nil
		},
		deleteFn:     func(_ context.Context, _ string) error { return nil },
		keyFromURLFn: func(rawURL string) (string, error) { return rawURL, nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func assertReauthError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeReauthRequired)
}

var errBoom = errors.New("boom")
