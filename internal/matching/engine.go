// Package matching подбирает и ранжирует подрядчиков под заявку.
package matching

import (
	"sort"

	"github.com/SGK112/Newcountertops/internal/model"
)

// DefaultLimit ограничивает размер выдачи, если вызывающая сторона его не задала.
const DefaultLimit = 10

// FindMatches фильтрует и ранжирует кандидатов для указанного zip-кода и
// предпочтений по материалам. Функция чистая: кандидаты не изменяются,
// результат — новый срез. Пустая выдача — нормальный исход, не ошибка.
func FindMatches(candidates []model.Fabricator, zipCode string, materials []model.Material, limit int) []model.Fabricator {
	if limit <= 0 {
		limit = DefaultLimit
	}

	matched := make([]model.Fabricator, 0, len(candidates))
	for _, f := range candidates {
		if !Qualifies(&f, zipCode, materials) {
			continue
		}
		matched = append(matched, f)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return ranksHigher(matched[i].Rating, matched[j].Rating)
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched
}

// Qualifies проверяет полный предикат отбора: активный аккаунт, активная
// подписка, обслуживание zip-кода и пересечение по материалам (если фильтр задан).
func Qualifies(f *model.Fabricator, zipCode string, materials []model.Material) bool {
	if f.Status != model.FabricatorActive {
		return false
	}
	if f.SubscriptionStatus != model.SubscriptionActive {
		return false
	}
	if !ServesZip(f, zipCode) {
		return false
	}
	if len(materials) > 0 && !handlesAny(f.Materials, materials) {
		return false
	}
	return true
}

// ServesZip сообщает, обслуживает ли подрядчик указанный zip-код: совпадение
// с zip-кодом собственного адреса, с zip-кодом зоны обслуживания либо зона
// с заполненными городом и штатом. Последнее правило — грубый географический
// фолбэк без учёта радиуса, сохранённый для совместимости поведения.
func ServesZip(f *model.Fabricator, zipCode string) bool {
	if f.Address.ZipCode == zipCode {
		return true
	}
	for _, area := range f.ServiceAreas {
		if area.ZipCode == zipCode {
			return true
		}
		if area.City != "" && area.State != "" {
			return true
		}
	}
	return false
}

func handlesAny(handled, wanted []model.Material) bool {
	for _, w := range wanted {
		for _, h := range handled {
			if h == w {
				return true
			}
		}
	}
	return false
}

// ranksHigher задаёт порядок выдачи: подрядчики без отзывов всегда ниже
// подрядчиков хотя бы с одним отзывом; далее по убыванию среднего рейтинга,
// при равенстве — по убыванию количества отзывов.
func ranksHigher(a, b model.Rating) bool {
	if (a.Count > 0) != (b.Count > 0) {
		return a.Count > 0
	}
	if a.Average != b.Average {
		return a.Average > b.Average
	}
	return a.Count > b.Count
}

// RecomputeRating пересчитывает агрегат рейтинга как свёртку полного списка
// отзывов. Список отзывов — единственный источник истины для агрегата;
// инкрементальная арифметика не используется.
func RecomputeRating(reviews []model.Review) model.Rating {
	if len(reviews) == 0 {
		return model.Rating{}
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}

	return model.Rating{
		Average: float64(sum) / float64(len(reviews)),
		Count:   len(reviews),
	}
}
