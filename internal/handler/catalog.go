package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/SGK112/Newcountertops/internal/model"
	"github.com/SGK112/Newcountertops/internal/repository"
)

type countertopResponse struct {
	ID          int64    `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Material    string   `json:"material"`
	Description string   `json:"description,omitempty"`
	PriceMin    float64  `json:"priceMin"`
	PriceMax    float64  `json:"priceMax"`
	Finishes    []string `json:"finishes,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Styles      []string `json:"styles,omitempty"`
	Views       int64    `json:"views"`
	CreatedAt   string   `json:"createdAt"`
}

func toCountertopResponse(c *model.Countertop) countertopResponse {
	return countertopResponse{
		ID:          c.ID,
		Slug:        c.Slug,
		Name:        c.Name,
		Material:    c.Material,
		Description: c.Description,
		PriceMin:    float64(c.PriceMinCents) / 100,
		PriceMax:    float64(c.PriceMaxCents) / 100,
		Finishes:    c.Finishes,
		Colors:      c.Colors,
		Styles:      c.Styles,
		Views:       c.Views,
		CreatedAt:   formatTime(c.CreatedAt),
	}
}

type countertopListResponse struct {
	Items      []countertopResponse `json:"items"`
	Pagination pageMeta             `json:"pagination"`
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

// ListCountertops возвращает страницу каталога с фильтрами и сортировкой.
func (h *Handler) ListCountertops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := parsePagination(r, 12)

	filter := repository.CatalogFilter{
		Material: q.Get("material"),
		Finish:   q.Get("finish"),
		Style:    q.Get("style"),
		Search:   q.Get("search"),
		Page:     page,
		Limit:    limit,
		SortBy:   q.Get("sortBy"),
		SortDesc: q.Get("order") != "asc",
	}

	if v := q.Get("priceMin"); v != "" {
		if dollars, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMinCents = int64(dollars * 100)
		}
	}
	if v := q.Get("priceMax"); v != "" {
		if dollars, err := strconv.ParseFloat(v, 64); err == nil {
			filter.PriceMaxCents = int64(dollars * 100)
		}
	}

	items, total, err := h.service.ListCountertops(r.Context(), filter)
	if err != nil {
		h.logger.Error("list countertops error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeCountertopPage(w, items, page, limit, total)
}

func (h *Handler) writeCountertopPage(w http.ResponseWriter, items []model.Countertop, page, limit, total int) {
	resp := countertopListResponse{
		Items:      make([]countertopResponse, 0, len(items)),
		Pagination: newPageMeta(page, limit, total),
	}
	for i := range items {
		resp.Items = append(resp.Items, toCountertopResponse(&items[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetCountertop возвращает позицию каталога по slug.
func (h *Handler) GetCountertop(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	c, err := h.service.GetCountertop(r.Context(), slug)
	if err != nil {
		if errors.Is(err, repository.ErrCountertopNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("get countertop error", zap.Error(err), zap.String("slug", slug))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toCountertopResponse(c))
}

// Materials возвращает список материалов каталога.
func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.service.Materials(r.Context())
	if err != nil {
		h.logger.Error("list materials error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, materials)
}

// Search выполняет текстовый поиск по каталогу.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	page, limit := parsePagination(r, 12)

	items, total, err := h.service.SearchCountertops(r.Context(), query, page, limit)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		h.logger.Error("search error", zap.Error(err), zap.String("query", query))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeCountertopPage(w, items, page, limit, total)
}

// Recommendations возвращает популярные позиции каталога.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	material := r.URL.Query().Get("material")
	budget := r.URL.Query().Get("budget")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.service.Recommendations(r.Context(), material, budget, limit)
	if err != nil {
		h.logger.Error("recommendations error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]countertopResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toCountertopResponse(&items[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}
