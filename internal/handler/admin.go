package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/SGK112/Newcountertops/internal/model"
	"github.com/SGK112/Newcountertops/internal/repository"
)

type assignmentResponse struct {
	FabricatorID int64   `json:"fabricatorId"`
	AssignedAt   string  `json:"assignedAt"`
	Price        float64 `json:"price,omitempty"`
	Status       string  `json:"status"`
}

type leadResponse struct {
	ID              int64                `json:"id"`
	FirstName       string               `json:"firstName"`
	LastName        string               `json:"lastName"`
	Email           string               `json:"email"`
	Phone           string               `json:"phone"`
	ProjectType     string               `json:"projectType"`
	ProjectSize     string               `json:"projectSize"`
	EstimatedBudget string               `json:"estimatedBudget"`
	Timeline        string               `json:"timeline"`
	Address         model.Address        `json:"address"`
	Materials       []string             `json:"materials,omitempty"`
	Notes           string               `json:"notes,omitempty"`
	Status          string               `json:"status"`
	Priority        string               `json:"priority"`
	Score           int                  `json:"score"`
	Assignments     []assignmentResponse `json:"assignments,omitempty"`
	SoldTo          *int64               `json:"soldTo,omitempty"`
	SalePrice       *float64             `json:"salePrice,omitempty"`
	SoldAt          *string              `json:"soldAt,omitempty"`
	CreatedAt       string               `json:"createdAt"`
}

func toLeadResponse(l *model.Lead) leadResponse {
	materials := make([]string, 0, len(l.Materials))
	for _, m := range l.Materials {
		materials = append(materials, string(m))
	}

	assignments := make([]assignmentResponse, 0, len(l.Assignments))
	for _, a := range l.Assignments {
		assignments = append(assignments, assignmentResponse{
			FabricatorID: a.FabricatorID,
			AssignedAt:   formatTime(a.AssignedAt),
			Price:        float64(a.PriceCents) / 100,
			Status:       string(a.Status),
		})
	}

	resp := leadResponse{
		ID:              l.ID,
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		Email:           l.Email,
		Phone:           l.Phone,
		ProjectType:     string(l.ProjectType),
		ProjectSize:     string(l.ProjectSize),
		EstimatedBudget: string(l.EstimatedBudget),
		Timeline:        string(l.Timeline),
		Address:         l.Address,
		Materials:       materials,
		Notes:           l.Notes,
		Status:          string(l.Status),
		Priority:        string(l.Priority),
		Score:           l.Score,
		Assignments:     assignments,
		SoldTo:          l.SoldTo,
		CreatedAt:       formatTime(l.CreatedAt),
	}

	if l.SalePriceCents != nil {
		price := float64(*l.SalePriceCents) / 100
		resp.SalePrice = &price
	}
	if l.SoldAt != nil {
		soldAt := formatTime(*l.SoldAt)
		resp.SoldAt = &soldAt
	}

	return resp
}

type dashboardResponse struct {
	Stats       *repository.DashboardStats `json:"stats"`
	RecentLeads []leadResponse             `json:"recentLeads"`
}

// Dashboard возвращает сводные показатели и последние заявки.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		h.logger.Error("dashboard stats error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	leads, _, err := h.service.ListLeads(r.Context(), repository.LeadFilter{Page: 1, Limit: 5})
	if err != nil {
		h.logger.Error("recent leads error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := dashboardResponse{
		Stats:       stats,
		RecentLeads: make([]leadResponse, 0, len(leads)),
	}
	for i := range leads {
		resp.RecentLeads = append(resp.RecentLeads, toLeadResponse(&leads[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

type leadListResponse struct {
	Items      []leadResponse `json:"items"`
	Pagination pageMeta       `json:"pagination"`
}

// ListLeads возвращает страницу заявок с фильтром по статусу.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r, 20)

	filter := repository.LeadFilter{
		Status: model.LeadStatus(r.URL.Query().Get("status")),
		Page:   page,
		Limit:  limit,
	}

	leads, total, err := h.service.ListLeads(r.Context(), filter)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("list leads error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := leadListResponse{
		Items:      make([]leadResponse, 0, len(leads)),
		Pagination: newPageMeta(page, limit, total),
	}
	for i := range leads {
		resp.Items = append(resp.Items, toLeadResponse(&leads[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetLead возвращает заявку со списком назначений.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	lead, err := h.service.GetLead(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get lead error", zap.Error(err), zap.Int64("leadID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

type updateLeadRequest struct {
	Status    string   `json:"status"`
	Priority  string   `json:"priority,omitempty"`
	SoldTo    *int64   `json:"soldTo,omitempty"`
	SalePrice *float64 `json:"salePrice,omitempty"`
}

// UpdateLead обновляет статус и приоритет заявки. При переходе в won
// с указанием покупателя фиксируется продажа.
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req updateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	status := model.LeadStatus(req.Status)

	if status == model.LeadStatusWon && req.SoldTo != nil && req.SalePrice != nil {
		err = h.service.MarkLeadSold(r.Context(), id, *req.SoldTo, int64(*req.SalePrice*100))
	} else {
		priority := model.Priority(req.Priority)
		if req.Priority == "" {
			lead, getErr := h.service.GetLead(r.Context(), id)
			if getErr != nil {
				if errors.Is(getErr, repository.ErrLeadNotFound) {
					http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
					return
				}
				h.logger.Error("get lead error", zap.Error(getErr), zap.Int64("leadID", id))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			priority = lead.Priority
		}
		err = h.service.UpdateLeadStatus(r.Context(), id, status, priority)
	}

	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) || errors.Is(err, repository.ErrFabricatorNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("update lead error", zap.Error(err), zap.Int64("leadID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	lead, err := h.service.GetLead(r.Context(), id)
	if err != nil {
		h.logger.Error("reload lead error", zap.Error(err), zap.Int64("leadID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

type fabricatorListResponse struct {
	Items      []fabricatorResponse `json:"items"`
	Pagination pageMeta             `json:"pagination"`
}

// ListFabricators возвращает страницу подрядчиков с фильтром по статусу.
func (h *Handler) ListFabricators(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r, 20)

	filter := repository.FabricatorFilter{
		Status: model.FabricatorStatus(r.URL.Query().Get("status")),
		Page:   page,
		Limit:  limit,
	}

	fabricators, total, err := h.service.ListFabricators(r.Context(), filter)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("list fabricators error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := fabricatorListResponse{
		Items:      make([]fabricatorResponse, 0, len(fabricators)),
		Pagination: newPageMeta(page, limit, total),
	}
	for i := range fabricators {
		resp.Items = append(resp.Items, toFabricatorResponse(&fabricators[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

type createFabricatorRequest struct {
	CompanyName  string              `json:"companyName"`
	BusinessType string              `json:"businessType"`
	Email        string              `json:"email"`
	Phone        string              `json:"phone"`
	Address      model.Address       `json:"address"`
	ServiceAreas []model.ServiceArea `json:"serviceAreas,omitempty"`
	Materials    []string            `json:"materials,omitempty"`
	Services     []string            `json:"services,omitempty"`
}

// CreateFabricator создаёт профиль подрядчика из админской панели.
func (h *Handler) CreateFabricator(w http.ResponseWriter, r *http.Request) {
	var req createFabricatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	materials := make([]model.Material, 0, len(req.Materials))
	for _, m := range req.Materials {
		materials = append(materials, model.Material(m))
	}

	f, err := h.service.RegisterFabricator(r.Context(), &model.Fabricator{
		CompanyName:  req.CompanyName,
		BusinessType: model.BusinessType(req.BusinessType),
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		ServiceAreas: req.ServiceAreas,
		Materials:    materials,
		Services:     req.Services,
	})
	if err != nil {
		if errors.Is(err, repository.ErrFabricatorExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("create fabricator error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toFabricatorResponse(f))
}

type updateFabricatorRequest struct {
	Status             string `json:"status"`
	SubscriptionStatus string `json:"subscriptionStatus"`
}

// UpdateFabricator обновляет статус аккаунта и подписки подрядчика.
func (h *Handler) UpdateFabricator(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req updateFabricatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err = h.service.UpdateFabricatorStatus(r.Context(), id,
		model.FabricatorStatus(req.Status), model.SubscriptionStatus(req.SubscriptionStatus))
	if err != nil {
		if errors.Is(err, repository.ErrFabricatorNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("update fabricator error", zap.Error(err), zap.Int64("fabricatorID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	f, err := h.service.GetFabricator(r.Context(), id)
	if err != nil {
		h.logger.Error("reload fabricator error", zap.Error(err), zap.Int64("fabricatorID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toFabricatorResponse(f))
}

type addReviewRequest struct {
	CustomerName string `json:"customerName"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
}

// AddReview добавляет отзыв о подрядчике и возвращает новый агрегат рейтинга.
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var req addReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	rating, err := h.service.AddReview(r.Context(), &model.Review{
		FabricatorID: id,
		CustomerName: req.CustomerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		if errors.Is(err, repository.ErrFabricatorNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("add review error", zap.Error(err), zap.Int64("fabricatorID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, rating)
}
