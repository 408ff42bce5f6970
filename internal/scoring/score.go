// Package scoring вычисляет приоритетный балл заявки по фиксированным весам.
package scoring

import (
	"github.com/SGK112/Newcountertops/internal/model"
)

const (
	budgetWeight   = 20
	timelineWeight = 15
	sizeWeight     = 10

	contactBonus   = 10
	notesBonus     = 5
	materialsBonus = 5

	// Порог длины заметок, после которого начисляется бонус.
	notesBonusMinLen = 50

	maxScore = 100
)

// Score вычисляет балл заявки в диапазоне [0, 100]. Функция детерминирована
// и не имеет побочных эффектов: одинаковая заявка всегда даёт одинаковый балл.
// Значение вне закрытых перечислений возвращает ошибку валидации, а не ноль.
func Score(lead *model.Lead) (int, error) {
	budget, ok := budgetOrdinal(lead.EstimatedBudget)
	if !ok {
		return 0, model.NewValidationError("estimatedBudget", "unknown value "+string(lead.EstimatedBudget))
	}

	urgency, ok := timelineOrdinal(lead.Timeline)
	if !ok {
		return 0, model.NewValidationError("timeline", "unknown value "+string(lead.Timeline))
	}

	size, ok := sizeOrdinal(lead.ProjectSize)
	if !ok {
		return 0, model.NewValidationError("projectSize", "unknown value "+string(lead.ProjectSize))
	}

	score := budget*budgetWeight + urgency*timelineWeight + size*sizeWeight

	if lead.Phone != "" && lead.Email != "" && lead.Address.Street != "" {
		score += contactBonus
	}
	if len(lead.Notes) > notesBonusMinLen {
		score += notesBonus
	}
	if len(lead.Materials) > 0 {
		score += materialsBonus
	}

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}

	return score, nil
}

// PriorityForScore выводит приоритет заявки из вычисленного балла.
func PriorityForScore(score int) model.Priority {
	switch {
	case score >= 80:
		return model.PriorityUrgent
	case score >= 60:
		return model.PriorityHigh
	case score >= 40:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func budgetOrdinal(b model.Budget) (int, bool) {
	switch b {
	case model.BudgetUnder5K:
		return 1, true
	case model.Budget5To10K:
		return 2, true
	case model.Budget10To20K:
		return 3, true
	case model.Budget20To50K:
		return 4, true
	case model.BudgetOver50K:
		return 5, true
	}
	return 0, false
}

func timelineOrdinal(t model.Timeline) (int, bool) {
	switch t {
	case model.TimelineFlexible:
		return 1, true
	case model.TimelineThreeToSix:
		return 2, true
	case model.TimelineTwoThree:
		return 3, true
	case model.TimelineOneMonth:
		return 4, true
	case model.TimelineASAP:
		return 5, true
	}
	return 0, false
}

func sizeOrdinal(s model.ProjectSize) (int, bool) {
	switch s {
	case model.SizeSmall:
		return 1, true
	case model.SizeMedium:
		return 2, true
	case model.SizeLarge:
		return 3, true
	case model.SizeVeryLarge:
		return 4, true
	}
	return 0, false
}
