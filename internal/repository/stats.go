package repository

import (
	"context"
	"fmt"
	"time"
)

// DashboardStats содержит сводные показатели для админской панели.
type DashboardStats struct {
	TotalLeads        int `json:"totalLeads"`
	NewLeads          int `json:"newLeads"`
	TotalFabricators  int `json:"totalFabricators"`
	ActiveFabricators int `json:"activeFabricators"`
	TotalCountertops  int `json:"totalCountertops"`
}

// GetDashboardStats возвращает сводные показатели. Новыми считаются заявки
// за последние 30 дней.
func (r *PostgresRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	since := time.Now().Add(-30 * 24 * time.Hour)

	var s DashboardStats
	err := r.pool.QueryRow(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM leads),
		     (SELECT COUNT(*) FROM leads WHERE created_at >= $1),
		     (SELECT COUNT(*) FROM fabricators),
		     (SELECT COUNT(*) FROM fabricators WHERE status = 'active'),
		     (SELECT COUNT(*) FROM countertops)`,
		since,
	).Scan(&s.TotalLeads, &s.NewLeads, &s.TotalFabricators, &s.ActiveFabricators, &s.TotalCountertops)
	if err != nil {
		return nil, fmt.Errorf("select stats: %w", err)
	}

	return &s, nil
}
