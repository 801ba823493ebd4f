package repository

import (
	"context"
	"errors"
	"time"

	"github.com/meinhoongagan/carehub/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// CaregiverSort selects the ordering of a caregiver search.
type CaregiverSort string

const (
	SortRating     CaregiverSort = "rating"
	SortPriceLow   CaregiverSort = "price-low"
	SortPriceHigh  CaregiverSort = "price-high"
	SortExperience CaregiverSort = "experience"
	SortNewest     CaregiverSort = "newest"

	// SortFeatured orders by rating then review count.
	SortFeatured CaregiverSort = "featured"
)

// CaregiverQuery is a conjunction of optional caregiver predicates.
type CaregiverQuery struct {
	Services      []string
	MinRate       *float64
	MaxRate       *float64
	MinRating     *float64
	MinExperience *int
	Search        string
	VerifiedOnly  bool
	Verified      *bool
	Sort          CaregiverSort
	Offset        int
	Limit         int
}

// BookingOrder selects the ordering of a booking listing.
type BookingOrder int

const (
	OrderNewest BookingOrder = iota
	OrderOldest
	OrderSchedule
)

// BookingQuery filters bookings. Zero fields impose no constraint.
// CreatedTo is exclusive, ScheduledTo inclusive.
type BookingQuery struct {
	ClientID      string
	CaregiverID   string
	Statuses      []models.BookingStatus
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
	Order         BookingOrder
	Offset        int
	Limit         int
}

// BookingCounts holds per caregiver booking totals.
type BookingCounts struct {
	Total     int64
	Completed int64
}

type UserQuery struct {
	Role   models.Role
	Offset int
	Limit  int
}

type NotificationQuery struct {
	UserID     string
	UnreadOnly bool
	Offset     int
	Limit      int
}

// Store is the persistence gateway consumed by the service layer.
type Store interface {
	// WithTx runs fn inside one transaction. Every call inside fn must go through tx.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, q UserQuery) ([]models.User, int64, error)
	CountUsers(ctx context.Context, role models.Role) (int64, error)
	LockAdminUsers(ctx context.Context) ([]models.User, error)

	CreateAdminProfile(ctx context.Context, admin *models.AdminProfile) error
	GetAdminProfile(ctx context.Context, userID string) (*models.AdminProfile, error)
	UpdateAdminProfile(ctx context.Context, admin *models.AdminProfile) error
	DeleteAdminProfile(ctx context.Context, userID string) error
	ListAdminProfiles(ctx context.Context) ([]models.AdminProfile, error)

	CreateService(ctx context.Context, service *models.Service) error
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetServiceByName(ctx context.Context, name string) (*models.Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)
	UpdateService(ctx context.Context, service *models.Service) error
	DeleteService(ctx context.Context, id string) error
	CountServices(ctx context.Context) (int64, error)
	CountCaregiversByService(ctx context.Context) (map[string]int64, error)

	CreateCaregiverProfile(ctx context.Context, profile *models.CaregiverProfile) error
	GetCaregiverProfile(ctx context.Context, id string) (*models.CaregiverProfile, error)
	GetCaregiverProfileByUser(ctx context.Context, userID string) (*models.CaregiverProfile, error)
	LockCaregiverProfile(ctx context.Context, id string) (*models.CaregiverProfile, error)
	UpdateCaregiverProfile(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteCaregiverProfile(ctx context.Context, id string) error
	SearchCaregivers(ctx context.Context, q CaregiverQuery) ([]models.CaregiverProfile, int64, error)
	CountCaregiverProfiles(ctx context.Context, verified *bool) (int64, error)

	ListCaregiverServices(ctx context.Context, caregiverID string) ([]models.CaregiverService, error)
	AddCaregiverService(ctx context.Context, link *models.CaregiverService) error
	RemoveCaregiverServices(ctx context.Context, caregiverID string, serviceIDs []string) error

	ListCertifications(ctx context.Context, caregiverID string) ([]models.Certification, error)
	CreateCertification(ctx context.Context, cert *models.Certification) error
	UpdateCertification(ctx context.Context, cert *models.Certification) error
	DeleteCertifications(ctx context.Context, ids []string) error

	ListAvailability(ctx context.Context, caregiverID string) ([]models.Availability, error)
	ReplaceAvailability(ctx context.Context, caregiverID string, slots []models.Availability) error

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	LockBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id string) error
	FindBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error)
	CountBookings(ctx context.Context, q BookingQuery) (int64, error)
	SumBookingAmount(ctx context.Context, q BookingQuery) (float64, error)
	CountBookingsByStatus(ctx context.Context, q BookingQuery) (map[models.BookingStatus]int64, error)
	BookingCountsByCaregiver(ctx context.Context, caregiverUserIDs []string) (map[string]BookingCounts, error)

	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByBooking(ctx context.Context, bookingID string) (*models.Review, error)
	ListReviews(ctx context.Context, caregiverID string, offset, limit int) ([]models.Review, int64, error)
	ListReviewRatings(ctx context.Context, caregiverID string) ([]float64, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, q NotificationQuery) ([]models.Notification, int64, error)
	MarkNotificationRead(ctx context.Context, userID, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	HasNotification(ctx context.Context, userID, bookingID string, kind models.NotificationType) (bool, error)
}
