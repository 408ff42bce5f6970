package service

import (
	"context"
	"fmt"

	"github.com/SGK112/Newcountertops/internal/matching"
	"github.com/SGK112/Newcountertops/internal/model"
	"github.com/SGK112/Newcountertops/internal/repository"
	"github.com/SGK112/Newcountertops/internal/scoring"
	"github.com/SGK112/Newcountertops/internal/validation"
)

const maxNotesLen = 1000

// SubmitLead принимает новую заявку: валидирует поля, считает оценку,
// подбирает подходящих подрядчиков и сохраняет заявку вместе с назначениями.
// Отсутствие подходящих подрядчиков не является ошибкой.
func (s *Service) SubmitLead(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	if err := validateLead(lead); err != nil {
		return nil, err
	}

	score, err := scoring.Score(lead)
	if err != nil {
		return nil, err
	}
	lead.Score = score
	lead.Status = model.LeadStatusNew
	lead.Priority = scoring.PriorityForScore(score)

	candidates, err := s.repo.FindFabricatorsByZipOrService(ctx, lead.Address.ZipCode)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	matches := matching.FindMatches(candidates, lead.Address.ZipCode, lead.Materials, matching.DefaultLimit)

	lead.Assignments = make([]model.Assignment, 0, len(matches))
	for _, f := range matches {
		lead.Assignments = append(lead.Assignments, model.Assignment{
			FabricatorID: f.ID,
			Status:       model.AssignmentPending,
		})
	}

	id, err := s.repo.CreateLead(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	lead.ID = id

	return lead, nil
}

func validateLead(lead *model.Lead) error {
	if lead.FirstName == "" {
		return model.NewValidationError("firstName", "required")
	}
	if lead.LastName == "" {
		return model.NewValidationError("lastName", "required")
	}
	if !validation.IsValidEmail(lead.Email) {
		return model.NewValidationError("email", "malformed address")
	}
	if !validation.IsValidPhone(lead.Phone) {
		return model.NewValidationError("phone", "malformed number")
	}
	if !lead.ProjectType.Valid() {
		return model.NewValidationError("projectType", "unknown value "+string(lead.ProjectType))
	}
	if !lead.ProjectSize.Valid() {
		return model.NewValidationError("projectSize", "unknown value "+string(lead.ProjectSize))
	}
	if !lead.EstimatedBudget.Valid() {
		return model.NewValidationError("estimatedBudget", "unknown value "+string(lead.EstimatedBudget))
	}
	if !lead.Timeline.Valid() {
		return model.NewValidationError("timeline", "unknown value "+string(lead.Timeline))
	}
	if lead.Address.City == "" {
		return model.NewValidationError("city", "required")
	}
	if lead.Address.State == "" {
		return model.NewValidationError("state", "required")
	}
	if !validation.IsValidZipCode(lead.Address.ZipCode) {
		return model.NewValidationError("zipCode", "malformed zip code")
	}
	for _, m := range lead.Materials {
		if !m.Valid() {
			return model.NewValidationError("materials", "unknown value "+string(m))
		}
	}
	if len(lead.Notes) > maxNotesLen {
		return model.NewValidationError("notes", fmt.Sprintf("must be at most %d characters", maxNotesLen))
	}
	return nil
}

// GetLead возвращает заявку по идентификатору.
func (s *Service) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	return s.repo.GetLead(ctx, id)
}

// ListLeads возвращает страницу заявок с общим количеством записей.
func (s *Service) ListLeads(ctx context.Context, filter repository.LeadFilter) ([]model.Lead, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, model.NewValidationError("status", "unknown value "+string(filter.Status))
	}
	return s.repo.ListLeads(ctx, filter)
}

// UpdateLeadStatus обновляет статус и приоритет заявки.
func (s *Service) UpdateLeadStatus(ctx context.Context, id int64, status model.LeadStatus, priority model.Priority) error {
	if !status.Valid() {
		return model.NewValidationError("status", "unknown value "+string(status))
	}
	if !priority.Valid() {
		return model.NewValidationError("priority", "unknown value "+string(priority))
	}
	return s.repo.UpdateLeadStatus(ctx, id, status, priority)
}

// MarkLeadSold отмечает продажу заявки подрядчику с указанной ценой.
func (s *Service) MarkLeadSold(ctx context.Context, id, fabricatorID, salePriceCents int64) error {
	if salePriceCents <= 0 {
		return model.NewValidationError("salePrice", "must be positive")
	}
	if _, err := s.repo.GetFabricator(ctx, fabricatorID); err != nil {
		return err
	}
	return s.repo.MarkLeadSold(ctx, id, fabricatorID, salePriceCents)
}
