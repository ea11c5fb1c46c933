package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bobr/forum-website/internal/domain"
	"github.com/bobr/forum-website/internal/repository"
	"gorm.io/gorm"
)

// PostsPerPage matches the board's front page: five posts, oldest first.
const PostsPerPage = 5

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("only the author can modify this post")
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

type PostInput struct {
	Title   string
	Content string
}

func (in PostInput) validate() error {
	if in.Title == "" || in.Content == "" {
		return domain.ErrEmptyField
	}
	if len(in.Title) > 250 {
		return domain.ErrTitleTooLong
	}
	if len(in.Content) > 900 {
		return domain.ErrContentTooLong
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, userID uint, input PostInput) (*domain.Post, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:     input.Title,
		Content:   input.Content,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, id, userID uint, input PostInput) (*domain.Post, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, ErrNotPostOwner
	}

	post.Title = input.Title
	post.Content = input.Content
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id, userID uint) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotPostOwner
	}
	return s.postRepo.Delete(ctx, id)
}

// Page is one page of posts plus everything the client needs to render the
// pagination strip.
type Page struct {
	Posts      []*domain.Post
	Page       int
	TotalPages int
	TotalPosts int64
	// Range holds page numbers with "..." placeholders for collapsed gaps.
	Range []string
}

func (s *PostService) List(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.List(ctx, PostsPerPage, (page-1)*PostsPerPage)
	if err != nil {
		return nil, err
	}

	return newPage(posts, page, total), nil
}

func (s *PostService) ListByUsername(ctx context.Context, username string, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	total, err := s.postRepo.CountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByUsername(ctx, username, PostsPerPage, (page-1)*PostsPerPage)
	if err != nil {
		return nil, err
	}

	return newPage(posts, page, total), nil
}

func newPage(posts []*domain.Post, page int, total int64) *Page {
	totalPages := int(total) / PostsPerPage
	if int(total)%PostsPerPage != 0 {
		totalPages++
	}
	return &Page{
		Posts:      posts,
		Page:       page,
		TotalPages: totalPages,
		TotalPosts: total,
		Range:      PageRange(page, totalPages, 2),
	}
}

// PageRange produces the pagination strip: always the first and last page,
// the pages within `neighbors` of the current one, and "..." for each
// collapsed gap.
func PageRange(current, totalPages, neighbors int) []string {
	var result []string
	for i := 1; i <= totalPages; i++ {
		switch {
		case i == 1 || i == totalPages ||
			(i >= current-neighbors && i <= current+neighbors):
			result = append(result, strconv.Itoa(i))
		case result[len(result)-1] != "...":
			result = append(result, "...")
		}
	}
	return result
}
