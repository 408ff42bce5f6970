// Package service реализует бизнес-логику маркетплейса столешниц.
package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/SGK112/Newcountertops/internal/catalogfeed"
	"github.com/SGK112/Newcountertops/internal/model"
	"github.com/SGK112/Newcountertops/internal/repository"
	"github.com/SGK112/Newcountertops/internal/validation"
)

// ErrInvalidCredentials возвращается при неверной паре email/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	CreateLead(ctx context.Context, lead *model.Lead) (int64, error)
	GetLead(ctx context.Context, id int64) (*model.Lead, error)
	ListLeads(ctx context.Context, filter repository.LeadFilter) ([]model.Lead, int, error)
	UpdateLeadStatus(ctx context.Context, id int64, status model.LeadStatus, priority model.Priority) error
	MarkLeadSold(ctx context.Context, id, fabricatorID, salePriceCents int64) error

	CreateFabricator(ctx context.Context, f *model.Fabricator) (int64, error)
	GetFabricator(ctx context.Context, id int64) (*model.Fabricator, error)
	FindFabricatorsByZipOrService(ctx context.Context, zipCode string) ([]model.Fabricator, error)
	ListFabricators(ctx context.Context, filter repository.FabricatorFilter) ([]model.Fabricator, int, error)
	UpdateFabricatorStatus(ctx context.Context, id int64, status model.FabricatorStatus, subscription model.SubscriptionStatus) error
	AddReview(ctx context.Context, review *model.Review) (model.Rating, error)
	GetReviews(ctx context.Context, fabricatorID int64) ([]model.Review, error)

	ListCountertops(ctx context.Context, filter repository.CatalogFilter) ([]model.Countertop, int, error)
	GetCountertopBySlug(ctx context.Context, slug string) (*model.Countertop, error)
	DistinctMaterials(ctx context.Context) ([]string, error)
	UpsertCountertop(ctx context.Context, c *model.Countertop) error

	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

// Service содержит бизнес-логику маркетплейса столешниц.
type Service struct {
	repo       Repository
	feedClient *catalogfeed.Client
}

// NewService создаёт новый сервис с указанным репозиторием и клиентом фида каталога.
func NewService(repo Repository, feedClient *catalogfeed.Client) *Service {
	return &Service{
		repo:       repo,
		feedClient: feedClient,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// RegisterUserParams содержит данные регистрации нового пользователя.
type RegisterUserParams struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	UserType    model.UserType
	CompanyName string
	Phone       string
	Address     model.Address
}

// RegisterUser регистрирует нового пользователя. Для подрядчиков дополнительно
// создаётся профиль подрядчика в статусе pending.
func (s *Service) RegisterUser(ctx context.Context, params RegisterUserParams) (*model.User, error) {
	if !validation.IsValidEmail(params.Email) {
		return nil, model.NewValidationError("email", "malformed address")
	}
	if len(params.Password) < 8 {
		return nil, model.NewValidationError("password", "must be at least 8 characters")
	}
	if params.FirstName == "" {
		return nil, model.NewValidationError("firstName", "required")
	}
	if params.LastName == "" {
		return nil, model.NewValidationError("lastName", "required")
	}
	if !params.UserType.Valid() {
		return nil, model.NewValidationError("userType", "unknown value "+string(params.UserType))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        params.Email,
		PasswordHash: hashed,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		UserType:     params.UserType,
	}

	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	if params.UserType == model.UserTypeFabricator || params.UserType == model.UserTypeContractor {
		companyName := params.CompanyName
		if companyName == "" {
			companyName = params.FirstName + " " + params.LastName
		}

		fabricator := &model.Fabricator{
			CompanyName:        companyName,
			BusinessType:       model.BusinessType(params.UserType),
			Email:              params.Email,
			Phone:              params.Phone,
			Address:            params.Address,
			Status:             model.FabricatorPending,
			SubscriptionStatus: model.SubscriptionInactive,
		}

		if _, err := s.repo.CreateFabricator(ctx, fabricator); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// AuthenticateUser проверяет email и пароль пользователя.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
