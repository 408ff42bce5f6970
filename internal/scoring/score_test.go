package scoring

import (
	"errors"
	"strings"
	"testing"

	"github.com/SGK112/Newcountertops/internal/model"
)

func baseLead() *model.Lead {
	return &model.Lead{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Phone:           "+1 555 0100",
		ProjectType:     model.ProjectKitchenRemodel,
		ProjectSize:     model.SizeSmall,
		EstimatedBudget: model.BudgetUnder5K,
		Timeline:        model.TimelineFlexible,
		Address: model.Address{
			City:    "Phoenix",
			State:   "AZ",
			ZipCode: "85001",
		},
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		mod  func(l *model.Lead)
		want int
	}{
		{
			name: "minimal lead without bonuses",
			mod: func(l *model.Lead) {
				l.Phone = ""
			},
			// 1*20 + 1*15 + 1*10, контактный бонус не начисляется без телефона
			want: 45,
		},
		{
			name: "maximal lead clamps to 100",
			mod: func(l *model.Lead) {
				l.EstimatedBudget = model.BudgetOver50K
				l.Timeline = model.TimelineASAP
				l.ProjectSize = model.SizeVeryLarge
				l.Address.Street = "123 Main St"
				l.Notes = strings.Repeat("x", 80)
				l.Materials = []model.Material{model.MaterialQuartz}
			},
			// сырая сумма 100+75+40+10+5+5 = 235 урезается до 100
			want: 100,
		},
		{
			name: "contact bonus requires street",
			mod: func(l *model.Lead) {
				l.Address.Street = "123 Main St"
			},
			want: 55,
		},
		{
			name: "notes bonus only above 50 chars",
			mod: func(l *model.Lead) {
				l.Phone = ""
				l.Notes = strings.Repeat("y", 50)
			},
			want: 45,
		},
		{
			name: "materials bonus",
			mod: func(l *model.Lead) {
				l.Phone = ""
				l.Materials = []model.Material{model.MaterialGranite}
			},
			want: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := baseLead()
			tt.mod(lead)

			got, err := Score(lead)
			if err != nil {
				t.Fatalf("Score error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	lead := baseLead()
	lead.Notes = strings.Repeat("z", 60)

	a, err := Score(lead)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	b, err := Score(lead)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if a != b {
		t.Fatalf("Score is not deterministic: %d != %d", a, b)
	}
}

func TestScoreBounds(t *testing.T) {
	budgets := []model.Budget{model.BudgetUnder5K, model.Budget5To10K, model.Budget10To20K, model.Budget20To50K, model.BudgetOver50K}
	timelines := []model.Timeline{model.TimelineFlexible, model.TimelineThreeToSix, model.TimelineTwoThree, model.TimelineOneMonth, model.TimelineASAP}
	sizes := []model.ProjectSize{model.SizeSmall, model.SizeMedium, model.SizeLarge, model.SizeVeryLarge}

	for _, b := range budgets {
		for _, tl := range timelines {
			for _, s := range sizes {
				lead := baseLead()
				lead.EstimatedBudget = b
				lead.Timeline = tl
				lead.ProjectSize = s

				got, err := Score(lead)
				if err != nil {
					t.Fatalf("Score(%s/%s/%s) error: %v", b, tl, s, err)
				}
				if got < 0 || got > 100 {
					t.Fatalf("Score(%s/%s/%s) = %d, out of [0,100]", b, tl, s, got)
				}
			}
		}
	}
}

func TestScoreMonotonicByBudget(t *testing.T) {
	budgets := []model.Budget{model.BudgetUnder5K, model.Budget5To10K, model.Budget10To20K, model.Budget20To50K, model.BudgetOver50K}

	prev := -1
	for _, b := range budgets {
		lead := baseLead()
		lead.EstimatedBudget = b

		got, err := Score(lead)
		if err != nil {
			t.Fatalf("Score error: %v", err)
		}
		if got < prev {
			t.Fatalf("score decreased for larger budget %s: %d < %d", b, got, prev)
		}
		prev = got
	}
}

func TestScoreRejectsUnknownEnum(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(l *model.Lead)
		field string
	}{
		{
			name:  "unknown budget",
			mod:   func(l *model.Lead) { l.EstimatedBudget = "over-9000" },
			field: "estimatedBudget",
		},
		{
			name:  "unknown timeline",
			mod:   func(l *model.Lead) { l.Timeline = "someday" },
			field: "timeline",
		},
		{
			name:  "unknown size",
			mod:   func(l *model.Lead) { l.ProjectSize = "gigantic" },
			field: "projectSize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := baseLead()
			tt.mod(lead)

			_, err := Score(lead)
			if err == nil {
				t.Fatalf("expected validation error")
			}

			var vErr *model.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *model.ValidationError, got %T", err)
			}
			if vErr.Field != tt.field {
				t.Fatalf("Field = %q, want %q", vErr.Field, tt.field)
			}
		})
	}
}

func TestPriorityForScore(t *testing.T) {
	tests := []struct {
		score int
		want  model.Priority
	}{
		{score: 100, want: model.PriorityUrgent},
		{score: 80, want: model.PriorityUrgent},
		{score: 79, want: model.PriorityHigh},
		{score: 60, want: model.PriorityHigh},
		{score: 45, want: model.PriorityMedium},
		{score: 39, want: model.PriorityLow},
		{score: 0, want: model.PriorityLow},
	}

	for _, tt := range tests {
		if got := PriorityForScore(tt.score); got != tt.want {
			t.Fatalf("PriorityForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
