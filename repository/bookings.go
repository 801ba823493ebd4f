package repository

import (
	"context"

	"github.com/meinhoongagan/carehub/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *GormStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(booking).Error)
}

func (s *GormStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := s.conn(ctx).Preload("Client").Preload("Caregiver").Preload("Service").
		Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

// LockBooking reads the bare booking row under a row lock.
func (s *GormStore) LockBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.conn(ctx).Clauses(forUpdate).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (s *GormStore) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Save(booking).Error)
}

func (s *GormStore) DeleteBooking(ctx context.Context, id string) error {
	return affected(s.conn(ctx).Where("id = ?", id).Delete(&models.Booking{}))
}

func (s *GormStore) bookingScope(ctx context.Context, q BookingQuery) *gorm.DB {
	tx := s.conn(ctx).Model(&models.Booking{})
	if q.ClientID != "" {
		tx = tx.Where("client_id = ?", q.ClientID)
	}
	if q.CaregiverID != "" {
		tx = tx.Where("caregiver_id = ?", q.CaregiverID)
	}
	if len(q.Statuses) > 0 {
		tx = tx.Where("status IN ?", q.Statuses)
	}
	if q.CreatedFrom != nil {
		tx = tx.Where("created_at >= ?", *q.CreatedFrom)
	}
	if q.CreatedTo != nil {
		tx = tx.Where("created_at < ?", *q.CreatedTo)
	}
	if q.ScheduledFrom != nil {
		tx = tx.Where("scheduled_date >= ?", *q.ScheduledFrom)
	}
	if q.ScheduledTo != nil {
		tx = tx.Where("scheduled_date <= ?", *q.ScheduledTo)
	}
	return tx
}

func (s *GormStore) FindBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error) {
	tx := s.bookingScope(ctx, q).Preload("Client").Preload("Caregiver").Preload("Service")
	switch q.Order {
	case OrderOldest:
		tx = tx.Order("created_at ASC")
	case OrderSchedule:
		tx = tx.Order("scheduled_date ASC").Order("start_time ASC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var bookings []models.Booking
	err := paginate(tx.Order("id ASC"), q.Offset, q.Limit).Find(&bookings).Error
	return bookings, err
}

func (s *GormStore) CountBookings(ctx context.Context, q BookingQuery) (int64, error) {
	var count int64
	err := s.bookingScope(ctx, q).Count(&count).Error
	return count, err
}

// SumBookingAmount sums total_amount over the matching bookings, 0 when none match.
func (s *GormStore) SumBookingAmount(ctx context.Context, q BookingQuery) (float64, error) {
	var sum float64
	err := s.bookingScope(ctx, q).Select("COALESCE(SUM(total_amount), 0)").Scan(&sum).Error
	return sum, err
}

func (s *GormStore) CountBookingsByStatus(ctx context.Context, q BookingQuery) (map[models.BookingStatus]int64, error) {
	var rows []struct {
		Status models.BookingStatus
		Count  int64
	}
	err := s.bookingScope(ctx, q).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.BookingStatus]int64, len(models.BookingStatuses))
	for _, status := range models.BookingStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// BookingCountsByCaregiver returns total and completed counts keyed by caregiver user id.
func (s *GormStore) BookingCountsByCaregiver(ctx context.Context, caregiverUserIDs []string) (map[string]BookingCounts, error) {
	counts := make(map[string]BookingCounts, len(caregiverUserIDs))
	if len(caregiverUserIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CaregiverID string
		Total       int64
		Completed   int64
	}
	err := s.conn(ctx).Model(&models.Booking{}).
		Select("caregiver_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed", models.StatusCompleted).
		Where("caregiver_id IN ?", caregiverUserIDs).
		Group("caregiver_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.CaregiverID] = BookingCounts{Total: row.Total, Completed: row.Completed}
	}
	return counts, nil
}

func (s *GormStore) CreateReview(ctx context.Context, review *models.Review) error {
	return translate(s.conn(ctx).Omit(clause.Associations).Create(review).Error)
}

func (s *GormStore) GetReviewByBooking(ctx context.Context, bookingID string) (*models.Review, error) {
	var review models.Review
	if err := s.conn(ctx).Where("booking_id = ?", bookingID).First(&review).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (s *GormStore) ListReviews(ctx context.Context, caregiverID string, offset, limit int) ([]models.Review, int64, error) {
	var total int64
	if err := s.conn(ctx).Model(&models.Review{}).Where("caregiver_id = ?", caregiverID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	tx := s.conn(ctx).Preload("Client", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "first_name", "last_name")
	}).Where("caregiver_id = ?", caregiverID).Order("created_at DESC").Order("id")
	err := paginate(tx, offset, limit).Find(&reviews).Error
	return reviews, total, err
}

func (s *GormStore) ListReviewRatings(ctx context.Context, caregiverID string) ([]float64, error) {
	var ratings []float64
	err := s.conn(ctx).Model(&models.Review{}).Where("caregiver_id = ?", caregiverID).Pluck("rating", &ratings).Error
	return ratings, err
}

func (s *GormStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return translate(s.conn(ctx).Create(n).Error)
}

func (s *GormStore) ListNotifications(ctx context.Context, q NotificationQuery) ([]models.Notification, int64, error) {
	base := func() *gorm.DB {
		tx := s.conn(ctx).Model(&models.Notification{}).Where("user_id = ?", q.UserID)
		if q.UnreadOnly {
			tx = tx.Where("is_read = ?", false)
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := paginate(base().Order("created_at DESC").Order("id"), q.Offset, q.Limit).Find(&notifications).Error
	return notifications, total, err
}

func (s *GormStore) MarkNotificationRead(ctx context.Context, userID, id string) error {
	return affected(s.conn(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true))
}

func (s *GormStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// HasNotification reports whether userID already holds a notification of type kind for bookingID.
func (s *GormStore) HasNotification(ctx context.Context, userID, bookingID string, kind models.NotificationType) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND booking_id = ? AND type = ?", userID, bookingID, kind).
		Count(&count).Error
	return count > 0, err
}
