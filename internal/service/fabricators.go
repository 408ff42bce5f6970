package service

import (
	"context"
	"fmt"

	"github.com/SGK112/Newcountertops/internal/matching"
	"github.com/SGK112/Newcountertops/internal/model"
	"github.com/SGK112/Newcountertops/internal/repository"
	"github.com/SGK112/Newcountertops/internal/validation"
)

// RegisterFabricator создаёт профиль подрядчика. Новые профили попадают
// в статус pending с неактивной подпиской и активируются администратором.
func (s *Service) RegisterFabricator(ctx context.Context, f *model.Fabricator) (*model.Fabricator, error) {
	if f.CompanyName == "" {
		return nil, model.NewValidationError("companyName", "required")
	}
	if !f.BusinessType.Valid() {
		return nil, model.NewValidationError("businessType", "unknown value "+string(f.BusinessType))
	}
	if !validation.IsValidEmail(f.Email) {
		return nil, model.NewValidationError("email", "malformed address")
	}
	if !validation.IsValidPhone(f.Phone) {
		return nil, model.NewValidationError("phone", "malformed number")
	}
	if !validation.IsValidZipCode(f.Address.ZipCode) {
		return nil, model.NewValidationError("zipCode", "malformed zip code")
	}
	for _, m := range f.Materials {
		if !m.Valid() {
			return nil, model.NewValidationError("materials", "unknown value "+string(m))
		}
	}

	f.Status = model.FabricatorPending
	f.SubscriptionStatus = model.SubscriptionInactive
	f.Rating = model.Rating{}

	id, err := s.repo.CreateFabricator(ctx, f)
	if err != nil {
		return nil, err
	}
	f.ID = id

	return f, nil
}

// FindMatches подбирает подрядчиков для указанного zip-кода и материалов.
// Возвращаются только активные подрядчики с действующей подпиской,
// отсортированные по рейтингу.
func (s *Service) FindMatches(ctx context.Context, zipCode string, materials []model.Material, limit int) ([]model.Fabricator, error) {
	if !validation.IsValidZipCode(zipCode) {
		return nil, model.NewValidationError("zipCode", "malformed zip code")
	}
	for _, m := range materials {
		if !m.Valid() {
			return nil, model.NewValidationError("materials", "unknown value "+string(m))
		}
	}

	candidates, err := s.repo.FindFabricatorsByZipOrService(ctx, zipCode)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	return matching.FindMatches(candidates, zipCode, materials, limit), nil
}

// GetFabricator возвращает подрядчика по идентификатору.
func (s *Service) GetFabricator(ctx context.Context, id int64) (*model.Fabricator, error) {
	return s.repo.GetFabricator(ctx, id)
}

// ListFabricators возвращает страницу подрядчиков с общим количеством записей.
func (s *Service) ListFabricators(ctx context.Context, filter repository.FabricatorFilter) ([]model.Fabricator, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, model.NewValidationError("status", "unknown value "+string(filter.Status))
	}
	return s.repo.ListFabricators(ctx, filter)
}

// UpdateFabricatorStatus обновляет статус аккаунта и подписки подрядчика.
func (s *Service) UpdateFabricatorStatus(ctx context.Context, id int64, status model.FabricatorStatus, subscription model.SubscriptionStatus) error {
	if !status.Valid() {
		return model.NewValidationError("status", "unknown value "+string(status))
	}
	if !subscription.Valid() {
		return model.NewValidationError("subscriptionStatus", "unknown value "+string(subscription))
	}
	return s.repo.UpdateFabricatorStatus(ctx, id, status, subscription)
}

// AddReview добавляет отзыв о подрядчике и возвращает пересчитанный агрегат
// рейтинга. Оценка вне диапазона 1–5 отклоняется, агрегат при этом не меняется.
func (s *Service) AddReview(ctx context.Context, review *model.Review) (model.Rating, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return model.Rating{}, model.NewValidationError("rating", "must be between 1 and 5")
	}
	if review.CustomerName == "" {
		return model.Rating{}, model.NewValidationError("customerName", "required")
	}
	return s.repo.AddReview(ctx, review)
}

// GetReviews возвращает отзывы о подрядчике, новые первыми.
func (s *Service) GetReviews(ctx context.Context, fabricatorID int64) ([]model.Review, error) {
	return s.repo.GetReviews(ctx, fabricatorID)
}
