package usecase

import (
	"context"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/pkg/apperr"
	"marketplace-backend/pkg/cache"

	"golang.org/x/sync/errgroup"
)

// StatsUsecase serves cached dashboard counters.
type StatsUsecase struct {
	orderRepo    domain.OrderRepository
	sellerRepo   domain.SellerRepository
	withdrawRepo domain.WithdrawRepository
	reportRepo   domain.ReportRepository
	loader       *cache.Loader
	policy       domain.StatusPolicy
	ttl          time.Duration
}

func NewStatsUsecase(orderRepo domain.OrderRepository, sellerRepo domain.SellerRepository, withdrawRepo domain.WithdrawRepository,
	reportRepo domain.ReportRepository, loader *cache.Loader, policy domain.StatusPolicy, ttl time.Duration) *StatsUsecase {
	return &StatsUsecase{
		orderRepo:    orderRepo,
		sellerRepo:   sellerRepo,
		withdrawRepo: withdrawRepo,
		reportRepo:   reportRepo,
		loader:       loader,
		policy:       policy,
		ttl:          ttl,
	}
}

// OrderStats counts orders per aggregate status plus a "total" entry.
func (uc *StatsUsecase) OrderStats(ctx context.Context) (map[string]int64, error) {
	out, err := cache.GetOrLoad(uc.loader, statsKey(uc.policy), uc.ttl, func() (map[string]int64, error) {
		counts, err := uc.orderRepo.CountByStatus(ctx, uc.policy)
		if err != nil {
			return nil, err
		}
		res := make(map[string]int64, len(domain.ComboStatuses)+1)
		var total int64
		for _, s := range domain.ComboStatuses {
			res[string(s)] = counts[s]
			total += counts[s]
		}
		res["total"] = total
		return res, nil
	})
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return out, nil
}

// Queue is the number of items waiting for an admin in each workflow.
type Queue struct {
	PendingSellers     int64 `json:"pendingSellers"`
	PendingWithdrawals int64 `json:"pendingWithdrawals"`
	PendingReports     int64 `json:"pendingReports"`
}

const queueKey = "stats:queue"

// AdminQueue counts pending work; the three counts run in parallel.
func (uc *StatsUsecase) AdminQueue(ctx context.Context) (Queue, error) {
	q, err := cache.GetOrLoad(uc.loader, queueKey, uc.ttl, func() (Queue, error) {
		var q Queue
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			_, n, err := uc.sellerRepo.GetAll(gctx, domain.SellerFilter{Page: 1, Limit: 1, Badge: domain.BadgePending})
			q.PendingSellers = n
			return err
		})
		g.Go(func() error {
			_, n, err := uc.withdrawRepo.GetAll(gctx, domain.WithdrawFilter{Page: 1, Limit: 1, Status: domain.WithdrawPending})
			q.PendingWithdrawals = n
			return err
		})
		g.Go(func() error {
			_, n, err := uc.reportRepo.GetAll(gctx, domain.ReportFilter{Page: 1, Limit: 1, Status: domain.ReportPending})
			q.PendingReports = n
			return err
		})
		return q, g.Wait()
	})
	if err != nil {
		return Queue{}, apperr.Wrap(err)
	}
	return q, nil
}
