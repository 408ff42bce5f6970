// Package handler содержит HTTP-обработчики API маркетплейса столешниц.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/SGK112/Newcountertops/internal/middleware"
	"github.com/SGK112/Newcountertops/internal/model"
	"github.com/SGK112/Newcountertops/internal/repository"
	"github.com/SGK112/Newcountertops/internal/service"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, params service.RegisterUserParams) (*model.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*model.User, error)

	SubmitLead(ctx context.Context, lead *model.Lead) (*model.Lead, error)
	GetLead(ctx context.Context, id int64) (*model.Lead, error)
	ListLeads(ctx context.Context, filter repository.LeadFilter) ([]model.Lead, int, error)
	UpdateLeadStatus(ctx context.Context, id int64, status model.LeadStatus, priority model.Priority) error
	MarkLeadSold(ctx context.Context, id, fabricatorID, salePriceCents int64) error

	RegisterFabricator(ctx context.Context, f *model.Fabricator) (*model.Fabricator, error)
	FindMatches(ctx context.Context, zipCode string, materials []model.Material, limit int) ([]model.Fabricator, error)
	GetFabricator(ctx context.Context, id int64) (*model.Fabricator, error)
	ListFabricators(ctx context.Context, filter repository.FabricatorFilter) ([]model.Fabricator, int, error)
	UpdateFabricatorStatus(ctx context.Context, id int64, status model.FabricatorStatus, subscription model.SubscriptionStatus) error
	AddReview(ctx context.Context, review *model.Review) (model.Rating, error)
	GetReviews(ctx context.Context, fabricatorID int64) ([]model.Review, error)

	ListCountertops(ctx context.Context, filter repository.CatalogFilter) ([]model.Countertop, int, error)
	GetCountertop(ctx context.Context, slug string) (*model.Countertop, error)
	Materials(ctx context.Context) ([]string, error)
	SearchCountertops(ctx context.Context, query string, page, limit int) ([]model.Countertop, int, error)
	Recommendations(ctx context.Context, material, budget string, limit int) ([]model.Countertop, error)

	DashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

// Handler реализует HTTP-обработчики API маркетплейса столешниц.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type validationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeValidationError отвечает 422 с указанием поля, если err — ошибка
// валидации. Возвращает true, если ответ отправлен.
func writeValidationError(w http.ResponseWriter, err error) bool {
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, validationErrorResponse{
		Field:   ve.Field,
		Message: ve.Message,
	})
	return true
}

type pageMeta struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

func newPageMeta(page, limit, total int) pageMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return pageMeta{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1 && total > 0,
	}
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
