package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/carehub/apperr"
	"github.com/meinhoongagan/carehub/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestStatusOf(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindNotFound:     fiber.StatusNotFound,
		apperr.KindConflict:     fiber.StatusConflict,
		apperr.KindForbidden:    fiber.StatusForbidden,
		apperr.KindUnauthorized: fiber.StatusUnauthorized,
		apperr.KindBadRequest:   fiber.StatusBadRequest,
		apperr.KindInternal:     fiber.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, utils.StatusOf(kind), string(kind))
	}
}

type ratingBody struct {
	BookingID string  `json:"booking_id" validate:"required"`
	Rating    float64 `json:"rating" validate:"gte=0,lte=5"`
}

func post(t *testing.T, app *fiber.App, path, body string) (int, utils.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out utils.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestBindJSON(t *testing.T) {
	app := fiber.New()
	app.Post("/reviews", func(c *fiber.Ctx) error {
		var in ratingBody
		if err := utils.BindJSON(c, &in); err != nil {
			return utils.RespondError(c, err)
		}
		return c.SendStatus(fiber.StatusCreated)
	})
	app.Post("/fail", func(c *fiber.Ctx) error {
		return utils.RespondError(c, apperr.Internal(errors.New("disk full"), "write"))
	})

	status, _ := post(t, app, "/reviews", `{"booking_id":"b-1","rating":4.5}`)
	assert.Equal(t, fiber.StatusCreated, status)

	status, body := post(t, app, "/reviews", `{"booking_id":"b-1","rating":7}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "BAD_REQUEST", body.Error)
	assert.Equal(t, "rating failed on lte=5", body.Message)

	status, body = post(t, app, "/reviews", `{"rating":3}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "booking_id failed on required", body.Message)

	status, body = post(t, app, "/reviews", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "cannot parse request body", body.Message)

	status, body = post(t, app, "/fail", `{}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body.Message)
}

func TestQueryHelpers(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		minRate, err := utils.QueryFloat(c, "minRate")
		if err != nil {
			return utils.RespondError(c, err)
		}
		out := map[string]interface{}{
			"limit":    utils.Limit(c),
			"page":     utils.Page(c),
			"services": utils.QueryList(c, "services"),
			"minRate":  minRate,
		}
		return c.JSON(out)
	})

	read := func(query string) (int, map[string]interface{}) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+query, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		out := map[string]interface{}{}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp.StatusCode, out
	}

	_, out := read("")
	assert.EqualValues(t, 0, out["limit"])
	assert.EqualValues(t, 1, out["page"])
	assert.Nil(t, out["services"])
	assert.Nil(t, out["minRate"])

	_, out = read("?limit=500&page=3&services=Companionship,%20,Respite%20Care&minRate=12.5")
	assert.EqualValues(t, utils.MaxLimit, out["limit"])
	assert.EqualValues(t, 3, out["page"])
	assert.Equal(t, []interface{}{"Companionship", "Respite Care"}, out["services"])
	assert.EqualValues(t, 12.5, out["minRate"])

	_, out = read("?limit=-4")
	assert.EqualValues(t, utils.MinLimit, out["limit"])

	status, _ := read("?minRate=cheap")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestMailer(t *testing.T) {
	var from string
	var to []string
	var raw bytes.Buffer
	sender := gomail.SendFunc(func(f string, rcpt []string, msg io.WriterTo) error {
		from, to = f, rcpt
		_, err := msg.WriteTo(&raw)
		return err
	})

	m := utils.NewMailerWithSender("care@example.com", sender)
	require.NoError(t, m.Send("ada@example.com", "Booking reminder", "See you tomorrow"))
	assert.Equal(t, "care@example.com", from)
	assert.Equal(t, []string{"ada@example.com"}, to)
	assert.Contains(t, raw.String(), "Subject: Booking reminder")
	assert.Contains(t, raw.String(), "See you tomorrow")

	failing := utils.NewMailerWithSender("care@example.com", gomail.SendFunc(func(string, []string, io.WriterTo) error {
		return errors.New("smtp down")
	}))
	assert.Error(t, failing.Send("ada@example.com", "x", "y"))
}

func TestQueryDate(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		start, err := utils.QueryDate(c, "start")
		if err != nil {
			return utils.RespondError(c, err)
		}
		if start == nil {
			return c.SendString("none")
		}
		return c.SendString(start.Format(time.RFC3339))
	})

	read := func(query string) (int, string) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+query, nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	_, body := read("")
	assert.Equal(t, "none", body)
	_, body = read("?start=2025-03-18")
	assert.Equal(t, "2025-03-18T00:00:00Z", body)
	status, _ := read("?start=18/03/2025")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
