package handlers

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"gitlab.com/nevasik7/alerting/logger"

	"walletscope/internal/domain"
	"walletscope/internal/service"
	"walletscope/pkg/httputil"
)

var addressRe = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// ScanService is the slice of the scanner the HTTP layer needs.
type ScanService interface {
	Scan(ctx context.Context, address string) (*domain.AnalysisResult, error)
	Current(address string) (*domain.AnalysisResult, error)
	Forget(address string)
	CheckDependency(ctx context.Context) error
}

type Handler struct {
	Log     logger.Logger
	Scanner ScanService
}

func NewHandler(log logger.Logger, scanner ScanService) *Handler {
	if scanner == nil {
		panic("scan service cannot be nil")
	}

	return &Handler{Log: log, Scanner: scanner}
}

type scanRequest struct {
	Address string `json:"address"`
}

// Scan triggers a manual scan and (re)arms polling for the address.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}

	address := strings.TrimSpace(req.Address)
	if !addressRe.MatchString(address) {
		h.writeError(w, r, http.StatusBadRequest, "invalid_address", "address must match 0x followed by 40 hex characters", nil)
		return
	}

	res, err := h.Scanner.Scan(r.Context(), address)
	if err != nil {
		h.Log.Errorf("Scan failed for %s: %v", address, err)
		h.writeError(w, r, http.StatusBadGateway, "scan_failed", "upstream providers unavailable", map[string]any{
			"error": err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, res)
}

// Wallet returns the latest full snapshot for the address.
func (h *Handler) Wallet(w http.ResponseWriter, r *http.Request) {
	res, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// Transfers returns only the merged transfer ledger.
func (h *Handler) Transfers(w http.ResponseWriter, r *http.Request) {
	res, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"address":   res.Address,
		"transfers": res.Transfers,
	})
}

// Risk returns only the risk assessment.
func (h *Handler) Risk(w http.ResponseWriter, r *http.Request) {
	res, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"address": res.Address,
		"risk":    res.Risk,
	})
}

// Alerts returns only the alert list.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	res, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"address": res.Address,
		"alerts":  res.Alerts,
	})
}

// Forget stops polling the address and drops its snapshot.
func (h *Handler) Forget(w http.ResponseWriter, r *http.Request) {
	address, ok := h.pathAddress(w, r)
	if !ok {
		return
	}

	h.Scanner.Forget(address)
	h.writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (*domain.AnalysisResult, bool) {
	address, ok := h.pathAddress(w, r)
	if !ok {
		return nil, false
	}

	res, err := h.Scanner.Current(address)
	if err != nil {
		if errors.Is(err, service.ErrNotScanned) {
			h.writeError(w, r, http.StatusNotFound, "not_scanned", "wallet has not been scanned yet", nil)
			return nil, false
		}
		h.Log.Errorf("Snapshot lookup failed for %s: %v", address, err)
		h.writeError(w, r, http.StatusInternalServerError, "internal", "snapshot lookup failed", nil)
		return nil, false
	}

	return res, true
}

func (h *Handler) pathAddress(w http.ResponseWriter, r *http.Request) (string, bool) {
	address := chi.URLParam(r, "address")
	if !addressRe.MatchString(address) {
		h.writeError(w, r, http.StatusBadRequest, "invalid_address", "address must match 0x followed by 40 hex characters", nil)
		return "", false
	}
	return address, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	if err := httputil.JSON(w, status, body, nil); err != nil {
		h.Log.Errorf("Failed to write response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string, details any) {
	if err := httputil.Error(w, r, status, code, msg, details); err != nil {
		h.Log.Errorf("Failed to write error response: %v", err)
	}
}
