package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quicklaunchweb/leadrelay/internal/notify"
	"github.com/quicklaunchweb/leadrelay/internal/site"
)

// recordingSender captures messages instead of delivering them.
type recordingSender struct {
	sent []notify.EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg notify.EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func addressProfile(t *testing.T) site.Profile {
	t.Helper()
	p, ok := site.Lookup("treepro")
	require.True(t, ok)
	return p
}

func emailProfile(t *testing.T) site.Profile {
	t.Helper()
	p, ok := site.Lookup("reyeshomerepair")
	require.True(t, ok)
	return p
}

func newHandler(t *testing.T, profile site.Profile, sender *recordingSender, opts notify.DispatcherOptions, devMode bool) *LeadHandler {
	t.Helper()
	dispatcher := notify.NewDispatcher(sender, opts, nil)
	return NewLeadHandler(profile, dispatcher, nil, nil, devMode)
}

func configuredOpts() notify.DispatcherOptions {
	return notify.DispatcherOptions{
		CredentialVar: "SENDGRID_API_KEY",
		CredentialSet: true,
		To:            "leads@example.com",
	}
}

// validBody returns a submission that passes the bot filter and validation
// for the address variant. The render timestamp is well in the past so the
// submission-speed check does not fire.
func validBody(overrides map[string]any) map[string]any {
	body := map[string]any{
		"name":    "Alex Carter",
		"phone":   "(713) 555-0176",
		"address": "1 Main St",
		"zipCode": "77339",
		"service": "Tree Removal",
		"message": "Oak in the backyard.",
		"_ts":     fmt.Sprintf("%d", time.Now().Add(-time.Minute).UnixMilli()),
	}
	for k, v := range overrides {
		body[k] = v
	}
	return body
}

func postJSON(t *testing.T, h *LeadHandler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/lead", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) LeadResponse {
	t.Helper()
	var resp LeadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSubmitAccepted(t *testing.T) {
	sender := &recordingSender{}
	h := newHandler(t, addressProfile(t), sender, configuredOpts(), false)

	rec := postJSON(t, h, validBody(nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.OK)
	assert.Empty(t, resp.Error)
	assert.Empty(t, resp.Mode)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "leads@example.com", msg.To)
	assert.Equal(t, "New Lead: Tree Removal | Alex Carter", msg.Subject)
	assert.Contains(t, msg.Text, "Name: Alex Carter")
	assert.Contains(t, msg.HTML, "Jimenez Tree Pro")
}

func TestSubmitHoneypotDiscardedSilently(t *testing.T) {
	sender := &recordingSender{}
	h := newHandler(t, addressProfile(t), sender, configuredOpts(), false)

	rec := postJSON(t, h, validBody(map[string]any{"website": "http://spam.example.com"}))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.OK)
	assert.Empty(t, resp.Error)
	assert.Empty(t, sender.sent, "spam must not reach the provider")
}

func TestSubmitTooFastDiscardedSilently(t *testing.T) {
	sender := &recordingSender{}
	h := newHandler(t, addressProfile(t), sender, configuredOpts(), false)

	rec := postJSON(t, h, validBody(map[string]any{
		"_ts": fmt.Sprintf("%d", time.Now().UnixMilli()),
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).OK)
	assert.Empty(t, sender.sent)
}

func TestSubmitSpamBeatsValidation(t *testing.T) {
	// A bot that trips the honeypot AND omits required fields still gets the
	// fake success, never the validation error.
	sender := &recordingSender{}
	h := newHandler(t, addressProfile(t), sender, configuredOpts(), false)

	rec := postJSON(t, h, map[string]any{
		"website": "http://spam.example.com",
		"message": "hello",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.OK)
	assert.Empty(t, resp.Error)
}

func TestSubmitMissingFields(t *testing.T) {
	sender := &recordingSender{}
	h := newHandler(t, addressProfile(t), sender, configuredOpts(), false)

	body := validBody(nil)
	delete(body, "phone")
	rec := postJSON(t, h, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.OK)
	assert.Equal(t, "Please provide your name, phone, address, zip code, and service needed.", resp.Error)
	assert.Empty(t, sender.sent)
}

func TestSubmitPhoneFormat(t *testing.T) {
	sender := &recordingSender{}
	h := newHandler(t, addressProfile(t), sender, configuredOpts(), false)

	rec := postJSON(t, h, validBody(map[string]any{"phone": "(713) 555-0123"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).OK)

	rec = postJSON(t, h, validBody(map[string]any{"phone": "555-0123"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.OK)
	assert.Equal(t, "Please enter a valid 10-digit phone number.", resp.Error)
}

func TestSubmitMalformedJSON(t *testing.T) {
	sender := &recordingSender{}
	h := newHandler(t, addressProfile(t), sender, configuredOpts(), false)

	req := httptest.NewRequest(http.MethodPost, "/api/lead", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.OK)
	assert.Equal(t, "Invalid request body.", resp.Error)
}

func TestSubmitFormEncoded(t *testing.T) {
	sender := &recordingSender{}
	h := newHandler(t, addressProfile(t), sender, configuredOpts(), false)

	form := url.Values{}
	form.Set("name", "Alex Carter")
	form.Set("phone", "7135550176")
	form.Set("address", "1 Main St")
	form.Set("zip", "77339")
	form.Set("service", "Stump Grinding")
	form.Set("_ts", fmt.Sprintf("%d", time.Now().Add(-time.Minute).UnixMilli()))

	req := httptest.NewRequest(http.MethodPost, "/api/lead", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).OK)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "Service: Stump Grinding")
}

func TestSubmitDryRun(t *testing.T) {
	sender := &recordingSender{}
	opts := configuredOpts()
	opts.DryRun = true
	h := newHandler(t, addressProfile(t), sender, opts, false)

	rec := postJSON(t, h, validBody(nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, "dry-run", resp.Mode)
	assert.Equal(t, "Dry run enabled. Email not sent.", resp.Message)
	assert.Empty(t, sender.sent)
}

func TestSubmitMissingCredentialsOutsideProduction(t *testing.T) {
	h := newHandler(t, addressProfile(t), &recordingSender{}, notify.DispatcherOptions{
		CredentialVar: "SENDGRID_API_KEY",
	}, false)

	rec := postJSON(t, h, validBody(nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, "dry-run", resp.Mode)
	assert.Equal(t, "Dry run only. Missing SENDGRID_API_KEY and LEAD_TO_EMAIL.", resp.Message)
}

func TestSubmitMisconfiguredInProduction(t *testing.T) {
	h := newHandler(t, addressProfile(t), &recordingSender{}, notify.DispatcherOptions{
		CredentialVar: "SENDGRID_API_KEY",
		Production:    true,
	}, false)

	rec := postJSON(t, h, validBody(nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.OK)
	assert.Equal(t, "Server misconfigured. Missing SENDGRID_API_KEY and LEAD_TO_EMAIL.", resp.Error)
}

func TestSubmitDeliveryError(t *testing.T) {
	sender := &recordingSender{err: errors.New("sendgrid: status 502")}

	t.Run("production message is generic", func(t *testing.T) {
		h := newHandler(t, addressProfile(t), sender, configuredOpts(), false)
		rec := postJSON(t, h, validBody(nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeResponse(t, rec)
		assert.False(t, resp.OK)
		assert.Equal(t, "Failed to send email.", resp.Error)
	})

	t.Run("development message carries detail", func(t *testing.T) {
		h := newHandler(t, addressProfile(t), sender, configuredOpts(), true)
		rec := postJSON(t, h, validBody(nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeResponse(t, rec)
		assert.False(t, resp.OK)
		assert.Contains(t, resp.Error, "Failed to send email:")
		assert.Contains(t, resp.Error, "sendgrid: status 502")
	})
}

func TestSubmitEmailVariant(t *testing.T) {
	sender := &recordingSender{}
	h := newHandler(t, emailProfile(t), sender, configuredOpts(), false)

	body := map[string]any{
		"name":    "Alex Carter",
		"phone":   "bad",
		"email":   "alex@example.com",
		"service": "Drywall Repair",
		"_ts":     fmt.Sprintf("%d", time.Now().Add(-time.Minute).UnixMilli()),
	}

	// Presence-only validation: the malformed phone is accepted as-is.
	rec := postJSON(t, h, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).OK)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "Email: alex@example.com")

	delete(body, "email")
	rec = postJSON(t, h, body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Please provide your name, phone, email, and service needed.", resp.Error)
}

func TestSubmitGetBodyIgnoredFields(t *testing.T) {
	// A JSON array is a valid body but not an object; fields are empty, so
	// validation fails with the required-field message.
	h := newHandler(t, addressProfile(t), &recordingSender{}, configuredOpts(), false)

	req := httptest.NewRequest(http.MethodPost, "/api/lead", strings.NewReader(`[1,2,3]`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.OK)
	assert.Equal(t, "Please provide your name, phone, address, zip code, and service needed.", resp.Error)
}
