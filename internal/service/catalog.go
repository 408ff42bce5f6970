package service

import (
	"context"
	"net/http"
	"time"

	"github.com/SGK112/Newcountertops/internal/model"
	"github.com/SGK112/Newcountertops/internal/repository"
)

// ListCountertops возвращает страницу каталога столешниц.
func (s *Service) ListCountertops(ctx context.Context, filter repository.CatalogFilter) ([]model.Countertop, int, error) {
	return s.repo.ListCountertops(ctx, filter)
}

// GetCountertop возвращает позицию каталога по slug и увеличивает счётчик просмотров.
func (s *Service) GetCountertop(ctx context.Context, slug string) (*model.Countertop, error) {
	if slug == "" {
		return nil, model.NewValidationError("slug", "required")
	}
	return s.repo.GetCountertopBySlug(ctx, slug)
}

// Materials возвращает список материалов, представленных в каталоге.
func (s *Service) Materials(ctx context.Context) ([]string, error) {
	return s.repo.DistinctMaterials(ctx)
}

// SearchCountertops выполняет текстовый поиск по названию и описанию каталога.
func (s *Service) SearchCountertops(ctx context.Context, query string, page, limit int) ([]model.Countertop, int, error) {
	if query == "" {
		return nil, 0, model.NewValidationError("q", "required")
	}
	return s.repo.ListCountertops(ctx, repository.CatalogFilter{
		Search:   query,
		Page:     page,
		Limit:    limit,
		SortBy:   "createdAt",
		SortDesc: true,
	})
}

// Потолки цены за кв. фут для рекомендаций по диапазону бюджета проекта.
var budgetPriceCapCents = map[model.Budget]int64{
	model.BudgetUnder5K: 5000,
	model.Budget5To10K:  7500,
	model.Budget10To20K: 10000,
	model.Budget20To50K: 15000,
}

// Recommendations возвращает самые просматриваемые позиции каталога,
// при необходимости ограниченные материалом и диапазоном бюджета.
func (s *Service) Recommendations(ctx context.Context, material, budget string, limit int) ([]model.Countertop, error) {
	if limit < 1 {
		limit = 6
	}

	filter := repository.CatalogFilter{
		Material: material,
		Limit:    limit,
		SortBy:   "views",
		SortDesc: true,
	}
	if maxCents, ok := budgetPriceCapCents[model.Budget(budget)]; ok {
		filter.PriceMaxCents = maxCents
	}

	res, _, err := s.repo.ListCountertops(ctx, filter)
	return res, err
}

// Минимальная пауза перед повтором страницы, когда фид ответил 429 без Retry-After.
const minFeedBackoff = time.Second

// StartCatalogSync запускает фоновую синхронизацию каталога с фидом производителя.
func (s *Service) StartCatalogSync(ctx context.Context, interval time.Duration) {
	if s.feedClient == nil {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.processCatalogSync(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.processCatalogSync(ctx)
			}
		}
	}()
}

func (s *Service) processCatalogSync(ctx context.Context) {
	for page := 1; ; page++ {
		products, statusCode, retryAfter, err := s.feedClient.GetProducts(ctx, page)
		if err != nil {
			return
		}

		if statusCode == http.StatusTooManyRequests {
			// Фид может ответить 429 без Retry-After; пауза обязательна в любом случае
			if retryAfter <= 0 {
				retryAfter = minFeedBackoff
			}
			timer := time.NewTimer(retryAfter)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			page--
			continue
		}

		if statusCode == http.StatusNoContent || len(products) == 0 {
			return
		}

		for _, p := range products {
			c := &model.Countertop{
				Slug:          p.Slug,
				Name:          p.Name,
				Material:      p.Material,
				Description:   p.Description,
				PriceMinCents: int64(p.PriceMin * 100),
				PriceMaxCents: int64(p.PriceMax * 100),
				Finishes:      p.Finishes,
				Colors:        p.Colors,
				Styles:        p.Styles,
			}
			_ = s.repo.UpsertCountertop(ctx, c)
		}
	}
}

// DashboardStats возвращает сводные показатели для админской панели.
func (s *Service) DashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.repo.GetDashboardStats(ctx)
}
