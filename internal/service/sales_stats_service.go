package service

import (
	"context"

	"github.com/licence-store/internal/backend"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/models"
)

// SalesStatsService 销售看板统计
type SalesStatsService struct {
	backend *backend.Client
	auth    *AuthService
}

// NewSalesStatsService 创建统计服务
func NewSalesStatsService(client *backend.Client, auth *AuthService) *SalesStatsService {
	return &SalesStatsService{backend: client, auth: auth}
}

// Stats 拉取购买单据并汇总
func (s *SalesStatsService) Stats(ctx context.Context, userID uint) (models.SalesStats, error) {
	var actions []models.Action
	err := s.auth.WithSession(ctx, userID, func(auth *backend.Auth) error {
		var err error
		actions, err = s.backend.ListOrders(ctx, auth, constants.ActionTypePurchase)
		return err
	})
	if err != nil {
		return models.SalesStats{}, err
	}
	return ComputeSalesStats(actions), nil
}

// ComputeSalesStats 只统计购买单据，报价单不计入
func ComputeSalesStats(actions []models.Action) models.SalesStats {
	stats := models.SalesStats{TotalRevenue: models.ZeroMoney()}
	for _, action := range actions {
		if action.Type != constants.ActionTypePurchase {
			continue
		}
		stats.TotalSales++
		stats.TotalRevenue = stats.TotalRevenue.Plus(action.Price)
		if action.Paid {
			stats.PaidSales++
		} else {
			stats.UnpaidSales++
		}
		if action.Delivered {
			stats.DeliveredSales++
		} else {
			stats.PendingSales++
		}
	}
	return stats
}
