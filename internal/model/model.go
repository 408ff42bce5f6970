// Package model содержит доменные сущности маркетплейса столешниц.
package model

import (
	"fmt"
	"time"
)

// User представляет зарегистрированного пользователя маркетплейса.
type User struct {
	ID           int64
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	UserType     UserType
	CreatedAt    time.Time
}

// UserType описывает роль пользователя в системе.
type UserType string

const (
	UserTypeHomeowner  UserType = "homeowner"
	UserTypeDesigner   UserType = "designer"
	UserTypeContractor UserType = "contractor"
	UserTypeFabricator UserType = "fabricator"
	UserTypeAdmin      UserType = "admin"
)

// Valid сообщает, входит ли значение в закрытое множество ролей.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeHomeowner, UserTypeDesigner, UserTypeContractor, UserTypeFabricator, UserTypeAdmin:
		return true
	}
	return false
}

// ProjectType описывает тип проекта в заявке.
type ProjectType string

const (
	ProjectKitchenRemodel  ProjectType = "kitchen-remodel"
	ProjectBathroomRemodel ProjectType = "bathroom-remodel"
	ProjectCommercial      ProjectType = "commercial"
	ProjectNewConstruction ProjectType = "new-construction"
	ProjectOther           ProjectType = "other"
)

// Valid сообщает, входит ли значение в закрытое множество типов проектов.
func (p ProjectType) Valid() bool {
	switch p {
	case ProjectKitchenRemodel, ProjectBathroomRemodel, ProjectCommercial, ProjectNewConstruction, ProjectOther:
		return true
	}
	return false
}

// ProjectSize описывает размер проекта.
type ProjectSize string

const (
	SizeSmall     ProjectSize = "small"
	SizeMedium    ProjectSize = "medium"
	SizeLarge     ProjectSize = "large"
	SizeVeryLarge ProjectSize = "very-large"
)

// Valid сообщает, входит ли значение в закрытое множество размеров проекта.
func (s ProjectSize) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeVeryLarge:
		return true
	}
	return false
}

// Budget описывает диапазон бюджета заявки.
type Budget string

const (
	BudgetUnder5K Budget = "under-5k"
	Budget5To10K  Budget = "5k-10k"
	Budget10To20K Budget = "10k-20k"
	Budget20To50K Budget = "20k-50k"
	BudgetOver50K Budget = "over-50k"
)

// Valid сообщает, входит ли значение в закрытое множество бюджетов.
func (b Budget) Valid() bool {
	switch b {
	case BudgetUnder5K, Budget5To10K, Budget10To20K, Budget20To50K, BudgetOver50K:
		return true
	}
	return false
}

// Timeline описывает желаемые сроки начала проекта.
type Timeline string

const (
	TimelineASAP       Timeline = "asap"
	TimelineOneMonth   Timeline = "1-month"
	TimelineTwoThree   Timeline = "2-3-months"
	TimelineThreeToSix Timeline = "3-6-months"
	TimelineFlexible   Timeline = "flexible"
)

// Valid сообщает, входит ли значение в закрытое множество сроков.
func (t Timeline) Valid() bool {
	switch t {
	case TimelineASAP, TimelineOneMonth, TimelineTwoThree, TimelineThreeToSix, TimelineFlexible:
		return true
	}
	return false
}

// Material описывает материал столешницы в заявках и профилях подрядчиков.
type Material string

const (
	MaterialGranite      Material = "granite"
	MaterialQuartz       Material = "quartz"
	MaterialMarble       Material = "marble"
	MaterialQuartzite    Material = "quartzite"
	MaterialConcrete     Material = "concrete"
	MaterialButcherBlock Material = "butcher-block"
	MaterialOther        Material = "other"
)

// Valid сообщает, входит ли значение в закрытое множество материалов.
func (m Material) Valid() bool {
	switch m {
	case MaterialGranite, MaterialQuartz, MaterialMarble, MaterialQuartzite, MaterialConcrete, MaterialButcherBlock, MaterialOther:
		return true
	}
	return false
}

// LeadStatus описывает статус обработки заявки.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

// Valid сообщает, входит ли значение в закрытое множество статусов заявки.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusQuoted, LeadStatusWon, LeadStatusLost:
		return true
	}
	return false
}

// Priority описывает приоритет заявки.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid сообщает, входит ли значение в закрытое множество приоритетов.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// AssignmentStatus описывает ответ подрядчика на назначенную заявку.
type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "pending"
	AssignmentAccepted AssignmentStatus = "accepted"
	AssignmentDeclined AssignmentStatus = "declined"
)

// Address содержит почтовый адрес. Street необязателен для заявок.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Assignment описывает назначение заявки подрядчику.
type Assignment struct {
	FabricatorID int64
	AssignedAt   time.Time
	PriceCents   int64
	Status       AssignmentStatus
}

// Lead представляет заявку потенциального клиента на столешницу.
type Lead struct {
	ID              int64
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	ProjectType     ProjectType
	ProjectSize     ProjectSize
	EstimatedBudget Budget
	Timeline        Timeline
	Address         Address
	Materials       []Material
	Notes           string
	Status          LeadStatus
	Priority        Priority
	Score           int
	Assignments     []Assignment
	SoldTo          *int64
	SalePriceCents  *int64
	SoldAt          *time.Time
	CreatedAt       time.Time
}

// FullName возвращает полное имя клиента.
func (l *Lead) FullName() string {
	return l.FirstName + " " + l.LastName
}

// BusinessType описывает вид деятельности подрядчика.
type BusinessType string

const (
	BusinessFabricator BusinessType = "fabricator"
	BusinessContractor BusinessType = "contractor"
	BusinessInstaller  BusinessType = "installer"
	BusinessSupplier   BusinessType = "supplier"
	BusinessDesigner   BusinessType = "designer"
)

// Valid сообщает, входит ли значение в закрытое множество видов деятельности.
func (b BusinessType) Valid() bool {
	switch b {
	case BusinessFabricator, BusinessContractor, BusinessInstaller, BusinessSupplier, BusinessDesigner:
		return true
	}
	return false
}

// FabricatorStatus описывает статус аккаунта подрядчика.
type FabricatorStatus string

const (
	FabricatorPending   FabricatorStatus = "pending"
	FabricatorApproved  FabricatorStatus = "approved"
	FabricatorActive    FabricatorStatus = "active"
	FabricatorSuspended FabricatorStatus = "suspended"
	FabricatorRejected  FabricatorStatus = "rejected"
)

// Valid сообщает, входит ли значение в закрытое множество статусов аккаунта.
func (s FabricatorStatus) Valid() bool {
	switch s {
	case FabricatorPending, FabricatorApproved, FabricatorActive, FabricatorSuspended, FabricatorRejected:
		return true
	}
	return false
}

// SubscriptionStatus описывает статус подписки подрядчика.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionInactive  SubscriptionStatus = "inactive"
	SubscriptionSuspended SubscriptionStatus = "suspended"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Valid сообщает, входит ли значение в закрытое множество статусов подписки.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionInactive, SubscriptionSuspended, SubscriptionCancelled:
		return true
	}
	return false
}

// ServiceArea описывает зону обслуживания подрядчика.
type ServiceArea struct {
	ZipCode     string `json:"zipCode"`
	City        string `json:"city"`
	State       string `json:"state"`
	RadiusMiles int    `json:"radius"`
}

// Rating содержит агрегат отзывов подрядчика: среднее и количество.
// Агрегат всегда пересчитывается из полного списка отзывов.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Fabricator представляет подрядчика-изготовителя столешниц.
type Fabricator struct {
	ID                 int64
	CompanyName        string
	BusinessType       BusinessType
	Email              string
	Phone              string
	Address            Address
	ServiceAreas       []ServiceArea
	Materials          []Material
	Services           []string
	Status             FabricatorStatus
	SubscriptionStatus SubscriptionStatus
	Rating             Rating
	CreatedAt          time.Time
}

// Review описывает отзыв клиента о подрядчике. Rating всегда в диапазоне 1–5.
type Review struct {
	ID           int64
	FabricatorID int64
	CustomerName string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

// Countertop представляет позицию каталога столешниц.
type Countertop struct {
	ID            int64
	Slug          string
	Name          string
	Material      string
	Description   string
	PriceMinCents int64
	PriceMaxCents int64
	Finishes      []string
	Colors        []string
	Styles        []string
	Views         int64
	CreatedAt     time.Time
}

// ValidationError описывает ошибку валидации входных данных с указанием поля.
type ValidationError struct {
	Field   string
	Message string
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError создаёт ошибку валидации для указанного поля.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
