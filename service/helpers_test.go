package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/logging"
	"github.com/meinhoongagan/carehub/service"
	"github.com/stretchr/testify/assert"
)

// Tuesday.
var fixedNow = time.Date(2025, time.March, 18, 10, 0, 0, 0, time.UTC)

func clockAt(t time.Time) service.Clock {
	return func() time.Time { return t }
}

func ptr[T any](v T) *T { return &v }

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 0, 0, 0, 0, time.UTC)
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
	}
}

type published struct {
	Type    string
	Payload interface{}
}

type fakePublisher struct {
	events []published
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, eventType string, payload interface{}) error {
	f.events = append(f.events, published{Type: eventType, Payload: payload})
	return f.err
}

func (f *fakePublisher) types() []string {
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeMailer struct {
	sent []string
	fail bool
}

func (m *fakeMailer) Send(to, _, _ string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, to)
	return nil
}

var nopLogger = logging.Nop()
