package service

import (
	"context"
	"mime/multipart"

	"pulse/internal/models"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	findByLoginFn   func(context.Context, string) (*models.User, error)
	existsFn        func(context.Context, uint) (bool, error)
	usernameTakenFn func(context.Context, string, uint) (bool, error)
	emailTakenFn    func(context.Context, string) (bool, error)
	profileFn       func(context.Context, uint, uint) (*models.UserProfile, error)
	searchFn        func(context.Context, string, uint) ([]models.UserSearchResult, error)
	updateFn        func(context.Context, uint, models.UserUpdate) (*models.User, error)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		findByLoginFn:   func(_ context.Context, s string) (*models.User, error) { return nil, models.NewNotFoundError("User", s) },
		existsFn:        func(_ context.Context, _ uint) (bool, error) { return true, nil },
		usernameTakenFn: func(_ context.Context, _ string, _ uint) (bool, error) { return false, nil },
		emailTakenFn:    func(_ context.Context, _ string) (bool, error) { return false, nil },
		profileFn:       func(_ context.Context, id, _ uint) (*models.UserProfile, error) { return &models.UserProfile{ID: id}, nil },
		searchFn:        func(_ context.Context, _ string, _ uint) ([]models.UserSearchResult, error) { return nil, nil },
		updateFn:        func(_ context.Context, id uint, _ models.UserUpdate) (*models.User, error) { return &models.User{ID: id}, nil },
	}
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) FindByLogin(ctx context.Context, identifier string) (*models.User, error) {
	return s.findByLoginFn(ctx, identifier)
}
func (s *userRepoStub) Exists(ctx context.Context, id uint) (bool, error) { return s.existsFn(ctx, id) }
func (s *userRepoStub) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return s.usernameTakenFn(ctx, username, exceptID)
}
func (s *userRepoStub) EmailTaken(ctx context.Context, email string) (bool, error) {
	return s.emailTakenFn(ctx, email)
}
func (s *userRepoStub) Profile(ctx context.Context, profileID, viewerID uint) (*models.UserProfile, error) {
	return s.profileFn(ctx, profileID, viewerID)
}
func (s *userRepoStub) Search(ctx context.Context, query string, requesterID uint) ([]models.UserSearchResult, error) {
	return s.searchFn(ctx, query, requesterID)
}
func (s *userRepoStub) Update(ctx context.Context, id uint, update models.UserUpdate) (*models.User, error) {
	return s.updateFn(ctx, id, update)
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	feedFn        func(context.Context, uint, models.Page) ([]models.PostView, error)
	getViewFn     func(context.Context, uint, uint) (*models.PostView, error)
	listByUserFn  func(context.Context, uint, uint, models.Page) ([]models.PostView, error)
	createFn      func(context.Context, *models.Post) error
	deleteOwnedFn func(context.Context, uint, uint) (*models.Post, error)
	existsFn      func(context.Context, uint) (bool, error)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		feedFn:        func(_ context.Context, _ uint, _ models.Page) ([]models.PostView, error) { return nil, nil },
		getViewFn:     func(_ context.Context, id, _ uint) (*models.PostView, error) { return &models.PostView{ID: id}, nil },
		listByUserFn:  func(_ context.Context, _, _ uint, _ models.Page) ([]models.PostView, error) { return nil, nil },
		createFn:      func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		deleteOwnedFn: func(_ context.Context, id, uid uint) (*models.Post, error) { return &models.Post{ID: id, UserID: uid}, nil },
		existsFn:      func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
}

func (s *postRepoStub) Feed(ctx context.Context, viewerID uint, page models.Page) ([]models.PostView, error) {
	return s.feedFn(ctx, viewerID, page)
}
func (s *postRepoStub) GetView(ctx context.Context, postID, viewerID uint) (*models.PostView, error) {
	return s.getViewFn(ctx, postID, viewerID)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID, viewerID uint, page models.Page) ([]models.PostView, error) {
	return s.listByUserFn(ctx, userID, viewerID, page)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error { return s.createFn(ctx, post) }
func (s *postRepoStub) DeleteOwned(ctx context.Context, postID, userID uint) (*models.Post, error) {
	return s.deleteOwnedFn(ctx, postID, userID)
}
func (s *postRepoStub) Exists(ctx context.Context, postID uint) (bool, error) {
	return s.existsFn(ctx, postID)
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	existsFn func(context.Context, uint, uint) (bool, error)
	createFn func(context.Context, *models.Like) error
	deleteFn func(context.Context, uint, uint) (*models.Like, error)
}

func (s *likeRepoStub) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	return s.existsFn(ctx, userID, postID)
}
func (s *likeRepoStub) Create(ctx context.Context, like *models.Like) error { return s.createFn(ctx, like) }
func (s *likeRepoStub) Delete(ctx context.Context, userID, postID uint) (*models.Like, error) {
	return s.deleteFn(ctx, userID, postID)
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	existsFn func(context.Context, uint, uint) (bool, error)
	createFn func(context.Context, *models.Follow) error
	deleteFn func(context.Context, uint, uint) (*models.Follow, error)
}

func (s *followRepoStub) Exists(ctx context.Context, a, b uint) (bool, error) {
	return s.existsFn(ctx, a, b)
}
func (s *followRepoStub) Create(ctx context.Context, f *models.Follow) error { return s.createFn(ctx, f) }
func (s *followRepoStub) Delete(ctx context.Context, a, b uint) (*models.Follow, error) {
	return s.deleteFn(ctx, a, b)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getViewFn    func(context.Context, uint) (*models.CommentView, error)
	listByPostFn func(context.Context, uint) ([]models.CommentView, error)
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error { return s.createFn(ctx, c) }
func (s *commentRepoStub) GetView(ctx context.Context, id uint) (*models.CommentView, error) {
	return s.getViewFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error) {
	return s.listByPostFn(ctx, postID)
}

// uploaderStub records stored and discarded paths.
type uploaderStub struct {
	storeFn   func(context.Context, UploadKind, uint, *multipart.FileHeader) (string, error)
	discarded []string
}

func (s *uploaderStub) Store(ctx context.Context, kind UploadKind, ownerID uint, f *multipart.FileHeader) (string, error) {
	return s.storeFn(ctx, kind, ownerID, f)
}
func (s *uploaderStub) Discard(_ context.Context, publicPath string) {
	s.discarded = append(s.discarded, publicPath)
}
