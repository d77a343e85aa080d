package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/quicklaunchweb/leadrelay/internal/intake"
	"github.com/quicklaunchweb/leadrelay/internal/notify"
	"github.com/quicklaunchweb/leadrelay/internal/observability/metrics"
	"github.com/quicklaunchweb/leadrelay/internal/site"
	"github.com/quicklaunchweb/leadrelay/pkg/logging"
)

// Submission outcomes recorded in metrics.
const (
	outcomeAccepted      = "accepted"
	outcomeDryRun        = "dry_run"
	outcomeSpam          = "spam"
	outcomeInvalid       = "invalid"
	outcomeDecodeError   = "decode_error"
	outcomeMisconfigured = "misconfigured"
	outcomeDeliveryError = "delivery_error"
)

// LeadResponse is the JSON envelope every intake response uses.
type LeadResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Message string `json:"message,omitempty"`
}

// Dispatcher delivers a rendered notification once.
type Dispatcher interface {
	Dispatch(ctx context.Context, p notify.Payload) (notify.Result, error)
}

// LeadHandler runs the intake pipeline for one site:
// decode, extract, bot-filter, validate, format, dispatch.
type LeadHandler struct {
	profile    site.Profile
	dispatcher Dispatcher
	metrics    *metrics.IntakeMetrics
	logger     *logging.Logger
	devMode    bool
}

// NewLeadHandler creates a lead intake handler for a site profile. devMode
// enables detailed delivery-error messages in responses.
func NewLeadHandler(profile site.Profile, dispatcher Dispatcher, m *metrics.IntakeMetrics, logger *logging.Logger, devMode bool) *LeadHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadHandler{
		profile:    profile,
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
		devMode:    devMode,
	}
}

// Submit handles POST /api/lead requests for the handler's site.
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	siteKey := h.profile.Key

	fields, err := intake.DecodeBody(r)
	if err != nil {
		h.logger.Error("lead decode failed", "site", siteKey, "error", err)
		h.metrics.ObserveSubmission(siteKey, outcomeDecodeError)
		writeJSON(w, http.StatusBadRequest, LeadResponse{OK: false, Error: "Invalid request body."})
		return
	}

	lead := intake.ExtractLead(fields)

	if rule := intake.ClassifySpam(fields, lead, time.Now()); rule != "" {
		// Respond as if accepted so bot operators get no signal about
		// which defense fired.
		h.logger.Info("lead discarded as spam", "site", siteKey, "rule", rule)
		h.metrics.ObserveSpam(siteKey, rule)
		h.metrics.ObserveSubmission(siteKey, outcomeSpam)
		writeJSON(w, http.StatusOK, LeadResponse{OK: true})
		return
	}

	if err := intake.ValidateLead(lead, h.profile); err != nil {
		h.logger.Info("lead rejected", "site", siteKey, "error", err)
		h.metrics.ObserveSubmission(siteKey, outcomeInvalid)
		writeJSON(w, http.StatusBadRequest, LeadResponse{OK: false, Error: err.Error()})
		return
	}

	payload := notify.BuildPayload(lead, h.profile, time.Now())

	start := time.Now()
	result, err := h.dispatcher.Dispatch(r.Context(), payload)
	h.metrics.ObserveDispatchLatency(siteKey, time.Since(start).Seconds())
	if err != nil {
		var cfgErr *notify.ConfigError
		if errors.As(err, &cfgErr) {
			h.metrics.ObserveSubmission(siteKey, outcomeMisconfigured)
			writeJSON(w, http.StatusInternalServerError, LeadResponse{OK: false, Error: cfgErr.Error()})
			return
		}
		h.logger.Error("lead dispatch failed", "site", siteKey, "error", err)
		h.metrics.ObserveSubmission(siteKey, outcomeDeliveryError)
		message := "Failed to send email."
		var delErr *notify.DeliveryError
		if h.devMode && errors.As(err, &delErr) {
			message = "Failed to send email: " + delErr.Detail()
		}
		writeJSON(w, http.StatusInternalServerError, LeadResponse{OK: false, Error: message})
		return
	}

	if result.Mode == notify.ModeDryRun {
		h.metrics.ObserveSubmission(siteKey, outcomeDryRun)
		writeJSON(w, http.StatusOK, LeadResponse{OK: true, Mode: result.Mode, Message: result.Message})
		return
	}

	h.logger.Info("lead accepted", "site", siteKey, "name", lead.Name, "service", lead.Service)
	h.metrics.ObserveSubmission(siteKey, outcomeAccepted)
	writeJSON(w, http.StatusOK, LeadResponse{OK: true})
}

func writeJSON(w http.ResponseWriter, status int, body LeadResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
