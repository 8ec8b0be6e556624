package usecase

import (
	"context"
	"testing"
	"time"

	"marketplace-backend/internal/domain"
	"marketplace-backend/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderStatsCachedUntilInvalidated(t *testing.T) {
	orders := new(mocks.MockOrderRepository)
	loader := newTestLoader()
	uc := NewStatsUsecase(orders, nil, nil, nil, loader, domain.PolicyFirst, time.Minute)
	orders.On("CountByStatus", mock.Anything, domain.PolicyFirst).Return(map[domain.ComboStatus]int64{
		domain.ComboPending:   3,
		domain.ComboCompleted: 2,
	}, nil)

	stats, err := uc.OrderStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats["total"])
	assert.Equal(t, int64(3), stats["PENDING"])
	assert.Equal(t, int64(0), stats["REFUNDED"])

	_, err = uc.OrderStats(context.Background())
	require.NoError(t, err)
	orders.AssertNumberOfCalls(t, "CountByStatus", 1)

	loader.Cache().Delete(statsKey(domain.PolicyFirst))
	_, err = uc.OrderStats(context.Background())
	require.NoError(t, err)
	orders.AssertNumberOfCalls(t, "CountByStatus", 2)
}

func TestAdminQueue(t *testing.T) {
	sellers := new(mocks.MockSellerRepository)
	withdraws := new(mocks.MockWithdrawRepository)
	reports := new(mocks.MockReportRepository)
	uc := NewStatsUsecase(nil, sellers, withdraws, reports, newTestLoader(), domain.PolicyFirst, time.Minute)

	sellers.On("GetAll", mock.Anything, mock.Anything).Return(nil, int64(4), nil)
	withdraws.On("GetAll", mock.Anything, mock.Anything).Return(nil, int64(2), nil)
	reports.On("GetAll", mock.Anything, mock.Anything).Return(nil, int64(1), nil)

	q, err := uc.AdminQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Queue{PendingSellers: 4, PendingWithdrawals: 2, PendingReports: 1}, q)
}
