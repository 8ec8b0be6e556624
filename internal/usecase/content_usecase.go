package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/cache"
)

type ContentUsecase interface {
	GetPage(ctx context.Context, key string) (*domain.ContentPage, error)
	GetActivePage(ctx context.Context, key string) (*domain.ContentPage, error)
	UpsertPage(ctx context.Context, key, title, body string, isActive bool) (*domain.ContentPage, error)
}

type contentUsecase struct {
	repo   domain.ContentRepository
	loader *cache.Loader
	ttl    time.Duration
}

func NewContentUsecase(r domain.ContentRepository, loader *cache.Loader, ttl time.Duration) ContentUsecase {
	return &contentUsecase{repo: r, loader: loader, ttl: ttl}
}

var pageKeyRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

func pageCacheKey(key string) string { return "page:" + key }

func (u *contentUsecase) GetPage(ctx context.Context, key string) (*domain.ContentPage, error) {
	p, err := u.repo.GetPage(ctx, key)
	if err != nil {
		return nil, repoErr(err, msgPageNotFound)
	}
	return p, nil
}

// GetActivePage is the public read; inactive pages look missing.
func (u *contentUsecase) GetActivePage(ctx context.Context, key string) (*domain.ContentPage, error) {
	p, err := cache.GetOrLoad(u.loader, pageCacheKey(key), u.ttl, func() (*domain.ContentPage, error) {
		return u.repo.GetPage(ctx, key)
	})
	if err != nil {
		return nil, repoErr(err, msgPageNotFound)
	}
	if !p.IsActive {
		return nil, apperr.NotFoundErr(msgPageNotFound)
	}
	return p, nil
}

func (u *contentUsecase) UpsertPage(ctx context.Context, key, title, body string, isActive bool) (*domain.ContentPage, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !pageKeyRe.MatchString(key) {
		return nil, apperr.FieldErr("key", "Mã trang chỉ gồm chữ thường, số và dấu gạch ngang")
	}
	if strings.TrimSpace(title) == "" {
		return nil, apperr.FieldErr("title", "Vui lòng nhập tiêu đề")
	}
	p := &domain.ContentPage{Key: key, Title: strings.TrimSpace(title), Body: body, IsActive: isActive}
	if err := u.repo.UpsertPage(ctx, p); err != nil {
		return nil, apperr.Wrap(err)
	}
	u.loader.Cache().Delete(pageCacheKey(key))
	return p, nil
}
