package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/SGK112/Newcountertops/internal/catalogfeed"
	"github.com/SGK112/Newcountertops/internal/model"
	"github.com/SGK112/Newcountertops/internal/repository"
)

type stubRepo struct {
	createUserID  int64
	createUserErr error

	getUser    *model.User
	getUserErr error

	createFabricatorID  int64
	createFabricatorErr error
	lastFabricator      *model.Fabricator

	getFabricator    *model.Fabricator
	getFabricatorErr error

	candidates    []model.Fabricator
	candidatesErr error

	createLeadID  int64
	createLeadErr error
	lastLead      *model.Lead

	addReviewRating model.Rating
	addReviewErr    error
	addReviewCalls  int

	lastCatalogFilter repository.CatalogFilter
	countertops       []model.Countertop

	markSoldCalls int
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	return s.createUserID, s.createUserErr
}

func (s *stubRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser, s.getUserErr
}

func (s *stubRepo) CreateLead(ctx context.Context, lead *model.Lead) (int64, error) {
	s.lastLead = lead
	return s.createLeadID, s.createLeadErr
}

func (s *stubRepo) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	return nil, repository.ErrLeadNotFound
}

func (s *stubRepo) ListLeads(ctx context.Context, filter repository.LeadFilter) ([]model.Lead, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) UpdateLeadStatus(ctx context.Context, id int64, status model.LeadStatus, priority model.Priority) error {
	return nil
}

func (s *stubRepo) MarkLeadSold(ctx context.Context, id, fabricatorID, salePriceCents int64) error {
	s.markSoldCalls++
	return nil
}

func (s *stubRepo) CreateFabricator(ctx context.Context, f *model.Fabricator) (int64, error) {
	s.lastFabricator = f
	return s.createFabricatorID, s.createFabricatorErr
}

func (s *stubRepo) GetFabricator(ctx context.Context, id int64) (*model.Fabricator, error) {
	return s.getFabricator, s.getFabricatorErr
}

func (s *stubRepo) FindFabricatorsByZipOrService(ctx context.Context, zipCode string) ([]model.Fabricator, error) {
	return s.candidates, s.candidatesErr
}

func (s *stubRepo) ListFabricators(ctx context.Context, filter repository.FabricatorFilter) ([]model.Fabricator, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) UpdateFabricatorStatus(ctx context.Context, id int64, status model.FabricatorStatus, subscription model.SubscriptionStatus) error {
	return nil
}

func (s *stubRepo) AddReview(ctx context.Context, review *model.Review) (model.Rating, error) {
	s.addReviewCalls++
	return s.addReviewRating, s.addReviewErr
}

func (s *stubRepo) GetReviews(ctx context.Context, fabricatorID int64) ([]model.Review, error) {
	return nil, nil
}

func (s *stubRepo) ListCountertops(ctx context.Context, filter repository.CatalogFilter) ([]model.Countertop, int, error) {
	s.lastCatalogFilter = filter
	return s.countertops, len(s.countertops), nil
}

func (s *stubRepo) GetCountertopBySlug(ctx context.Context, slug string) (*model.Countertop, error) {
	return nil, repository.ErrCountertopNotFound
}

func (s *stubRepo) DistinctMaterials(ctx context.Context) ([]string, error) {
	return []string{"granite", "quartz"}, nil
}

func (s *stubRepo) UpsertCountertop(ctx context.Context, c *model.Countertop) error {
	return nil
}

func (s *stubRepo) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return &repository.DashboardStats{}, nil
}

func validRegisterParams() RegisterUserParams {
	return RegisterUserParams{
		Email:     "user@example.com",
		Password:  "longenough",
		FirstName: "Jane",
		LastName:  "Doe",
		UserType:  model.UserTypeHomeowner,
	}
}

func TestRegisterUser_PropagatesDuplicateError(t *testing.T) {
	repo := &stubRepo{
		createUserErr: repository.ErrUserExists,
	}
	svc := NewService(repo, nil)

	_, err := svc.RegisterUser(context.Background(), validRegisterParams())
	if !errors.Is(err, repository.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterUser_Validation(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)

	tests := []struct {
		name   string
		mutate func(*RegisterUserParams)
		field  string
	}{
		{"bad email", func(p *RegisterUserParams) { p.Email = "not-an-email" }, "email"},
		{"short password", func(p *RegisterUserParams) { p.Password = "short" }, "password"},
		{"missing first name", func(p *RegisterUserParams) { p.FirstName = "" }, "firstName"},
		{"missing last name", func(p *RegisterUserParams) { p.LastName = "" }, "lastName"},
		{"unknown user type", func(p *RegisterUserParams) { p.UserType = "alien" }, "userType"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			params := validRegisterParams()
			tc.mutate(&params)

			_, err := svc.RegisterUser(context.Background(), params)

			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("Field = %s, want %s", ve.Field, tc.field)
			}
		})
	}
}

func TestRegisterUser_ContractorGetsPendingProfile(t *testing.T) {
	repo := &stubRepo{createUserID: 7, createFabricatorID: 3}
	svc := NewService(repo, nil)

	params := validRegisterParams()
	params.UserType = model.UserTypeContractor
	params.CompanyName = "Stone Works"

	user, err := svc.RegisterUser(context.Background(), params)
	if err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	if user.ID != 7 {
		t.Fatalf("user ID = %d, want 7", user.ID)
	}
	if repo.lastFabricator == nil {
		t.Fatalf("expected fabricator profile to be created")
	}
	if repo.lastFabricator.CompanyName != "Stone Works" {
		t.Fatalf("company name = %s, want Stone Works", repo.lastFabricator.CompanyName)
	}
	if repo.lastFabricator.Status != model.FabricatorPending {
		t.Fatalf("status = %s, want pending", repo.lastFabricator.Status)
	}
	if repo.lastFabricator.SubscriptionStatus != model.SubscriptionInactive {
		t.Fatalf("subscription = %s, want inactive", repo.lastFabricator.SubscriptionStatus)
	}
}

func TestRegisterUser_HomeownerHasNoProfile(t *testing.T) {
	repo := &stubRepo{createUserID: 1}
	svc := NewService(repo, nil)

	if _, err := svc.RegisterUser(context.Background(), validRegisterParams()); err != nil {
		t.Fatalf("RegisterUser error: %v", err)
	}
	if repo.lastFabricator != nil {
		t.Fatalf("homeowner must not get a fabricator profile")
	}
}

func TestAuthenticateUser_InvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	repo := &stubRepo{
		getUser: &model.User{
			ID:           1,
			Email:        "user@example.com",
			PasswordHash: hashed,
		},
	}
	svc := NewService(repo, nil)

	_, err = svc.AuthenticateUser(context.Background(), "user@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUser_UnknownUser(t *testing.T) {
	repo := &stubRepo{getUserErr: repository.ErrUserNotFound}
	svc := NewService(repo, nil)

	_, err := svc.AuthenticateUser(context.Background(), "nobody@example.com", "pass")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func validLead() *model.Lead {
	return &model.Lead{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Phone:           "555-123-4567",
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

func TestSubmitLead_ScoresAndAssigns(t *testing.T) {
	repo := &stubRepo{
		createLeadID: 42,
		candidates: []model.Fabricator{
			{
				ID:                 1,
				Address:            model.Address{ZipCode: "85001"},
				Status:             model.FabricatorActive,
				SubscriptionStatus: model.SubscriptionActive,
			},
			{
				ID:                 2,
				Address:            model.Address{ZipCode: "85001"},
				Status:             model.FabricatorPending,
				SubscriptionStatus: model.SubscriptionActive,
			},
		},
	}
	svc := NewService(repo, nil)

	lead, err := svc.SubmitLead(context.Background(), validLead())
	if err != nil {
		t.Fatalf("SubmitLead error: %v", err)
	}
	if lead.ID != 42 {
		t.Fatalf("lead ID = %d, want 42", lead.ID)
	}
	if lead.Score != 45 {
		t.Fatalf("score = %d, want 45", lead.Score)
	}
	if lead.Status != model.LeadStatusNew {
		t.Fatalf("status = %s, want new", lead.Status)
	}
	if lead.Priority != model.PriorityMedium {
		t.Fatalf("priority = %s, want medium", lead.Priority)
	}
	if len(lead.Assignments) != 1 {
		t.Fatalf("assignments = %d, want 1 (pending fabricator filtered out)", len(lead.Assignments))
	}
	if lead.Assignments[0].FabricatorID != 1 {
		t.Fatalf("assigned fabricator = %d, want 1", lead.Assignments[0].FabricatorID)
	}
	if lead.Assignments[0].Status != model.AssignmentPending {
		t.Fatalf("assignment status = %s, want pending", lead.Assignments[0].Status)
	}
}

func TestSubmitLead_NoMatchesIsNotAnError(t *testing.T) {
	repo := &stubRepo{createLeadID: 1}
	svc := NewService(repo, nil)

	lead, err := svc.SubmitLead(context.Background(), validLead())
	if err != nil {
		t.Fatalf("SubmitLead error: %v", err)
	}
	if len(lead.Assignments) != 0 {
		t.Fatalf("assignments = %d, want 0", len(lead.Assignments))
	}
}

func TestSubmitLead_Validation(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)

	tests := []struct {
		name   string
		mutate func(*model.Lead)
		field  string
	}{
		{"bad email", func(l *model.Lead) { l.Email = "nope" }, "email"},
		{"bad phone", func(l *model.Lead) { l.Phone = "abc" }, "phone"},
		{"unknown project type", func(l *model.Lead) { l.ProjectType = "garage" }, "projectType"},
		{"unknown budget", func(l *model.Lead) { l.EstimatedBudget = "millions" }, "estimatedBudget"},
		{"bad zip", func(l *model.Lead) { l.Address.ZipCode = "8500" }, "zipCode"},
		{"unknown material", func(l *model.Lead) { l.Materials = []model.Material{"obsidian"} }, "materials"},
		{"notes too long", func(l *model.Lead) {
			for len(l.Notes) <= maxNotesLen {
				l.Notes += "very long notes "
			}
		}, "notes"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lead := validLead()
			tc.mutate(lead)

			_, err := svc.SubmitLead(context.Background(), lead)

			var ve *model.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("Field = %s, want %s", ve.Field, tc.field)
			}
		})
	}
}

func TestAddReview_RejectsOutOfRangeRating(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.AddReview(context.Background(), &model.Review{
			FabricatorID: 1,
			CustomerName: "Bob",
			Rating:       rating,
		})

		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("rating %d: expected ValidationError, got %v", rating, err)
		}
		if ve.Field != "rating" {
			t.Fatalf("Field = %s, want rating", ve.Field)
		}
	}

	if repo.addReviewCalls != 0 {
		t.Fatalf("repository must not be called for invalid ratings, got %d calls", repo.addReviewCalls)
	}
}

func TestAddReview_ReturnsRecomputedRating(t *testing.T) {
	repo := &stubRepo{
		addReviewRating: model.Rating{Average: 3.67, Count: 3},
	}
	svc := NewService(repo, nil)

	rating, err := svc.AddReview(context.Background(), &model.Review{
		FabricatorID: 1,
		CustomerName: "Bob",
		Rating:       3,
	})
	if err != nil {
		t.Fatalf("AddReview error: %v", err)
	}
	if rating.Count != 3 || rating.Average != 3.67 {
		t.Fatalf("rating = %+v, want {3.67 3}", rating)
	}
}

func TestMarkLeadSold_RequiresPositivePrice(t *testing.T) {
	repo := &stubRepo{getFabricator: &model.Fabricator{ID: 1}}
	svc := NewService(repo, nil)

	if err := svc.MarkLeadSold(context.Background(), 1, 1, 0); err == nil {
		t.Fatalf("expected error for zero price")
	}
	if repo.markSoldCalls != 0 {
		t.Fatalf("repository must not be called for invalid price")
	}
}

func TestMarkLeadSold_UnknownFabricator(t *testing.T) {
	repo := &stubRepo{getFabricatorErr: repository.ErrFabricatorNotFound}
	svc := NewService(repo, nil)

	err := svc.MarkLeadSold(context.Background(), 1, 99, 500000)
	if !errors.Is(err, repository.ErrFabricatorNotFound) {
		t.Fatalf("expected ErrFabricatorNotFound, got %v", err)
	}
}

func TestFindMatches_RejectsBadZip(t *testing.T) {
	svc := NewService(&stubRepo{}, nil)

	_, err := svc.FindMatches(context.Background(), "notzip", nil, 10)

	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "zipCode" {
		t.Fatalf("Field = %s, want zipCode", ve.Field)
	}
}

func TestRecommendations_SortsByViews(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil)

	if _, err := svc.Recommendations(context.Background(), "quartz", "", 0); err != nil {
		t.Fatalf("Recommendations error: %v", err)
	}
	if repo.lastCatalogFilter.SortBy != "views" || !repo.lastCatalogFilter.SortDesc {
		t.Fatalf("unexpected sort: %+v", repo.lastCatalogFilter)
	}
	if repo.lastCatalogFilter.Limit != 6 {
		t.Fatalf("limit = %d, want 6", repo.lastCatalogFilter.Limit)
	}
	if repo.lastCatalogFilter.Material != "quartz" {
		t.Fatalf("material = %s, want quartz", repo.lastCatalogFilter.Material)
	}
	if repo.lastCatalogFilter.PriceMaxCents != 0 {
		t.Fatalf("price cap without budget = %d, want 0", repo.lastCatalogFilter.PriceMaxCents)
	}
}

func TestRecommendations_BudgetCapsPrice(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, nil)

	if _, err := svc.Recommendations(context.Background(), "", "under-5k", 4); err != nil {
		t.Fatalf("Recommendations error: %v", err)
	}
	if repo.lastCatalogFilter.PriceMaxCents != 5000 {
		t.Fatalf("price cap = %d, want 5000", repo.lastCatalogFilter.PriceMaxCents)
	}
	if repo.lastCatalogFilter.Limit != 4 {
		t.Fatalf("limit = %d, want 4", repo.lastCatalogFilter.Limit)
	}
}

func TestRegisterFabricator_DefaultsToPending(t *testing.T) {
	repo := &stubRepo{createFabricatorID: 9}
	svc := NewService(repo, nil)

	f, err := svc.RegisterFabricator(context.Background(), &model.Fabricator{
		CompanyName:        "Stone Works",
		BusinessType:       model.BusinessFabricator,
		Email:              "shop@example.com",
		Phone:              "555-123-4567",
		Address:            model.Address{City: "Phoenix", State: "AZ", ZipCode: "85001"},
		Status:             model.FabricatorActive,
		SubscriptionStatus: model.SubscriptionActive,
	})
	if err != nil {
		t.Fatalf("RegisterFabricator error: %v", err)
	}
	if f.ID != 9 {
		t.Fatalf("id = %d, want 9", f.ID)
	}
	if f.Status != model.FabricatorPending {
		t.Fatalf("status = %s, want pending", f.Status)
	}
	if f.SubscriptionStatus != model.SubscriptionInactive {
		t.Fatalf("subscription = %s, want inactive", f.SubscriptionStatus)
	}
}

func TestCatalogSync_WaitsOnBareTooManyRequests(t *testing.T) {
	var requests int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	svc := NewService(&stubRepo{}, catalogfeed.NewClient(ts.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	svc.processCatalogSync(ctx)

	if n := atomic.LoadInt64(&requests); n > 2 {
		t.Fatalf("feed requests during 429 backoff = %d, want at most 2", n)
	}
}

func TestStartCatalogSync_NoClient(t *testing.T) {
	svc := &Service{}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})

	go func() {
		svc.StartCatalogSync(ctx, time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("StartCatalogSync did not return without client")
	}
}
