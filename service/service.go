package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/models"
	"github.com/meinhoongagan/carehub/repository"
)

// Clock returns the current time. Tests replace it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

const (
	defaultPage        = 1
	defaultSearchLimit = 10
	defaultListLimit   = 12
	defaultPageLimit   = 10
)

// Pagination is the page window echoed back to callers.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

func newPagination(total int64, page, limit int) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// normalizePage applies defaults to a 1-indexed page and limit and returns the row offset.
func normalizePage(page, limit, fallback int) (int, int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = fallback
	}
	return page, limit, (page - 1) * limit
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percent(part, whole int64) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// storeErr maps repository errors onto the service taxonomy.
func storeErr(err error, op string, notFound string, args ...interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound, args...)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("%s: record already exists", op)
	}
	var typed *apperr.Error
	if errors.As(err, &typed) {
		return err
	}
	return apperr.Internal(err, op)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Publisher fans domain events out to subscribers.
type Publisher interface {
	PublishJSON(ctx context.Context, eventType string, payload interface{}) error
}
