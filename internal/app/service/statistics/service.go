package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/merchkit/paygate/internal/models"
)

// Service computes order statistics for the admin dashboard.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

type OrderStatisticsRequest struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type DailyOrderStat struct {
	Date       string          `json:"date"`
	OrderCount int64           `json:"order_count"`
	Gmv        decimal.Decimal `json:"gmv"`
}

type OrderStatisticsResponse struct {
	Days        []*DailyOrderStat `json:"days"`
	TotalOrders int64             `json:"total_orders"`
	TotalGmv    decimal.Decimal   `json:"total_gmv"`
}

type dailyRow struct {
	Day   time.Time       `gorm:"column:day"`
	Count int64           `gorm:"column:cnt"`
	Gmv   decimal.Decimal `gorm:"column:gmv"`
}

// OrderStatistics returns per-day order counts and GMV over [From, To).
// GMV sums order totals as-is: a deployment settles in a single presentment
// currency, so amounts are directly comparable. Mixed-currency data would
// need a per-currency breakdown instead.
func (s *Service) OrderStatistics(ctx context.Context, req *OrderStatisticsRequest) (*OrderStatisticsResponse, error) {
	if req == nil || req.From.IsZero() || req.To.IsZero() || !req.To.After(req.From) {
		return nil, fmt.Errorf("invalid statistics range")
	}

	var rows []*dailyRow
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("date_trunc('day', placed_at) AS day, count(*) AS cnt, coalesce(sum(total), 0) AS gmv").
		Where("placed_at >= ? AND placed_at < ?", req.From, req.To).
		Group("date_trunc('day', placed_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	resp := &OrderStatisticsResponse{
		TotalGmv: decimal.Zero,
		Days: lo.Map(rows, func(r *dailyRow, _ int) *DailyOrderStat {
			return &DailyOrderStat{Date: r.Day.Format("2006-01-02"), OrderCount: r.Count, Gmv: r.Gmv}
		}),
	}
	for _, r := range rows {
		resp.TotalOrders += r.Count
		resp.TotalGmv = resp.TotalGmv.Add(r.Gmv)
	}
	return resp, nil
}
