package usecase

import (
	"time"

	memcache "marketplace-backend/internal/infrastructure/cache"
	"marketplace-backend/pkg/cache"
)

func newTestLoader() *cache.Loader {
	return cache.NewLoader(memcache.NewMemoryCache(time.Minute, time.Minute))
}

func int64Ptr(v int64) *int64 { return &v }
