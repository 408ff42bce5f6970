package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/SGK112/Newcountertops/internal/model"
)

type leadRequest struct {
	FirstName       string        `json:"firstName"`
	LastName        string        `json:"lastName"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	ProjectType     string        `json:"projectType"`
	ProjectSize     string        `json:"projectSize"`
	EstimatedBudget string        `json:"estimatedBudget"`
	Timeline        string        `json:"timeline"`
	Address         model.Address `json:"address"`
	Materials       []string      `json:"materials,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

type leadCreatedResponse struct {
	ID         int64  `json:"id"`
	Score      int    `json:"score"`
	Priority   string `json:"priority"`
	MatchCount int    `json:"matchCount"`
}

// SubmitLead принимает новую заявку от клиента.
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	materials := make([]model.Material, 0, len(req.Materials))
	for _, m := range req.Materials {
		materials = append(materials, model.Material(m))
	}

	lead := &model.Lead{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		ProjectType:     model.ProjectType(req.ProjectType),
		ProjectSize:     model.ProjectSize(req.ProjectSize),
		EstimatedBudget: model.Budget(req.EstimatedBudget),
		Timeline:        model.Timeline(req.Timeline),
		Address:         req.Address,
		Materials:       materials,
		Notes:           req.Notes,
	}

	lead, err := h.service.SubmitLead(r.Context(), lead)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("submit lead error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, leadCreatedResponse{
		ID:         lead.ID,
		Score:      lead.Score,
		Priority:   string(lead.Priority),
		MatchCount: len(lead.Assignments),
	})
}

type fabricatorResponse struct {
	ID                 int64               `json:"id"`
	CompanyName        string              `json:"companyName"`
	BusinessType       string              `json:"businessType"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone"`
	Address            model.Address       `json:"address"`
	ServiceAreas       []model.ServiceArea `json:"serviceAreas,omitempty"`
	Materials          []string            `json:"materials,omitempty"`
	Services           []string            `json:"services,omitempty"`
	Status             string              `json:"status"`
	SubscriptionStatus string              `json:"subscriptionStatus"`
	Rating             model.Rating        `json:"rating"`
	CreatedAt          string              `json:"createdAt"`
}

func toFabricatorResponse(f *model.Fabricator) fabricatorResponse {
	materials := make([]string, 0, len(f.Materials))
	for _, m := range f.Materials {
		materials = append(materials, string(m))
	}

	return fabricatorResponse{
		ID:                 f.ID,
		CompanyName:        f.CompanyName,
		BusinessType:       string(f.BusinessType),
		Email:              f.Email,
		Phone:              f.Phone,
		Address:            f.Address,
		ServiceAreas:       f.ServiceAreas,
		Materials:          materials,
		Services:           f.Services,
		Status:             string(f.Status),
		SubscriptionStatus: string(f.SubscriptionStatus),
		Rating:             f.Rating,
		CreatedAt:          formatTime(f.CreatedAt),
	}
}

// FindMatches возвращает ранжированный список подрядчиков для zip-кода.
func (h *Handler) FindMatches(w http.ResponseWriter, r *http.Request) {
	zipCode := r.URL.Query().Get("zipCode")
	if zipCode == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var materials []model.Material
	for _, m := range r.URL.Query()["material"] {
		materials = append(materials, model.Material(m))
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	matches, err := h.service.FindMatches(r.Context(), zipCode, materials, limit)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("find matches error", zap.Error(err), zap.String("zipCode", zipCode))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]fabricatorResponse, 0, len(matches))
	for i := range matches {
		resp = append(resp, toFabricatorResponse(&matches[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

type reviewResponse struct {
	ID           int64  `json:"id"`
	CustomerName string `json:"customerName"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

// GetReviews возвращает отзывы о подрядчике, новые первыми.
func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	reviews, err := h.service.GetReviews(r.Context(), id)
	if err != nil {
		h.logger.Error("get reviews error", zap.Error(err), zap.Int64("fabricatorID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for _, rev := range reviews {
		resp = append(resp, reviewResponse{
			ID:           rev.ID,
			CustomerName: rev.CustomerName,
			Rating:       rev.Rating,
			Comment:      rev.Comment,
			CreatedAt:    formatTime(rev.CreatedAt),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
