// Package backend talks to the practice backend's /doctor REST API on
// behalf of an authenticated doctor.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/clinic-billing/internal/config"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/repository"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"go.uber.org/zap"
)

const (
	maxResponseBytes = 4 << 20
	networkMessage   = "Network error. Please check your connection and try again."
)

// Client implements repository.PracticeBackend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	cacheTTL time.Duration
	cache    map[string]*cachedCatalog
	cacheMu  sync.RWMutex
}

type cachedCatalog struct {
	services  []entity.CatalogService
	expiresAt time.Time
}

var _ repository.PracticeBackend = (*Client)(nil)

// NewClient creates a practice backend client
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:   logger.Named("backend"),
		cacheTTL: cfg.CatalogCache,
		cache:    make(map[string]*cachedCatalog),
	}
}

type call struct {
	method   string
	path     string
	query    url.Values
	body     any
	fallback string
}

// do performs one request. A transport failure becomes a network error;
// a non-2xx status or success:false body becomes a rejected error that
// carries the backend's message when it sent one.
func (c *Client) do(ctx context.Context, sess entity.DoctorSession, rq call, out any) error {
	var reader io.Reader
	if rq.body != nil {
		data, err := json.Marshal(rq.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", rq.path, err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + rq.path
	if len(rq.query) > 0 {
		target += "?" + rq.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, rq.method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rq.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", rq.method),
			zap.String("path", rq.path),
			zap.Error(err),
		)
		return apperror.NewNetworkError(networkMessage, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperror.NewNetworkError(networkMessage, err)
	}

	c.logger.Debug("backend request",
		zap.String("method", rq.method),
		zap.String("path", rq.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	var env envelope
	hasEnvelope := json.Unmarshal(raw, &env) == nil

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := resp.StatusCode
		if code >= http.StatusInternalServerError {
			code = http.StatusBadGateway
		}
		return apperror.NewRejectedError(code, messageOr(env.Message, rq.fallback))
	}
	if hasEnvelope && env.Success != nil && !*env.Success {
		return apperror.NewRejectedError(http.StatusBadGateway, messageOr(env.Message, rq.fallback))
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("backend response not understood", zap.String("path", rq.path), zap.Error(err))
		return apperror.NewRejectedError(http.StatusBadGateway, rq.fallback)
	}
	return nil
}

func messageOr(message, fallback string) string {
	if strings.TrimSpace(message) != "" {
		return message
	}
	return fallback
}

// ListServices returns the doctor's catalog. Responses are cached per
// doctor for the configured duration.
func (c *Client) ListServices(ctx context.Context, sess entity.DoctorSession) ([]entity.CatalogService, error) {
	if cached, ok := c.cachedServices(sess.DoctorID); ok {
		return cached, nil
	}

	var raw json.RawMessage
	if err := c.do(ctx, sess, call{
		method:   http.MethodGet,
		path:     "/doctor/services",
		fallback: "Failed to fetch services",
	}, &raw); err != nil {
		return nil, err
	}

	// The backend answers with either a bare array or {services: [...]}.
	var dtos []serviceDTO
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &dtos); err != nil {
			return nil, apperror.NewRejectedError(http.StatusBadGateway, "Failed to fetch services")
		}
	} else if len(trimmed) > 0 {
		var wrapped servicesDTO
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, apperror.NewRejectedError(http.StatusBadGateway, "Failed to fetch services")
		}
		dtos = wrapped.Services
	}

	services := make([]entity.CatalogService, 0, len(dtos))
	for _, dto := range dtos {
		services = append(services, dto.toEntity())
	}

	c.storeServices(sess.DoctorID, services)
	return cloneServices(services), nil
}

func (c *Client) CreateService(ctx context.Context, sess entity.DoctorSession, in entity.CatalogServiceInput) (*entity.CatalogService, error) {
	var dto serviceDTO
	err := c.do(ctx, sess, call{
		method:   http.MethodPost,
		path:     "/doctor/services/create",
		body:     in,
		fallback: "Failed to save service.",
	}, &dto)
	if err != nil {
		return nil, err
	}
	c.InvalidateServices(sess.DoctorID)

	svc := dto.toEntity()
	if svc.ID == "" {
		svc = entity.CatalogService{Name: in.Name, Price: in.Price, Description: in.Description, Disabled: in.Disabled}
	}
	return &svc, nil
}

func (c *Client) UpdateService(ctx context.Context, sess entity.DoctorSession, id string, in entity.CatalogServiceInput) (*entity.CatalogService, error) {
	var dto serviceDTO
	err := c.do(ctx, sess, call{
		method:   http.MethodPut,
		path:     "/doctor/services/edit/" + url.PathEscape(id),
		body:     in,
		fallback: "Failed to save service.",
	}, &dto)
	if err != nil {
		return nil, err
	}
	c.InvalidateServices(sess.DoctorID)

	svc := dto.toEntity()
	if svc.ID == "" {
		svc = entity.CatalogService{ID: id, Name: in.Name, Price: in.Price, Description: in.Description, Disabled: in.Disabled}
	}
	return &svc, nil
}

// ListPatients returns the doctor's patients with contact fields resolved.
func (c *Client) ListPatients(ctx context.Context, sess entity.DoctorSession) ([]entity.Patient, error) {
	var dto patientsDTO
	if err := c.do(ctx, sess, call{
		method:   http.MethodGet,
		path:     "/doctor/unique/patients",
		fallback: "Failed to fetch patients",
	}, &dto); err != nil {
		return nil, err
	}

	patients := make([]entity.Patient, 0, len(dto.Patients))
	for _, p := range dto.Patients {
		patients = append(patients, p.toEntity())
	}
	return patients, nil
}

func (c *Client) CreatePayment(ctx context.Context, sess entity.DoctorSession, payload *entity.PaymentPayload) (*entity.Payment, error) {
	var env envelope
	if err := c.do(ctx, sess, call{
		method:   http.MethodPost,
		path:     "/doctor/payment/create",
		body:     payload,
		fallback: "Failed to create payment",
	}, &env); err != nil {
		return nil, err
	}

	for _, raw := range []json.RawMessage{env.Data, env.Payment} {
		if p, ok := decodePayment(raw); ok {
			return p, nil
		}
	}
	return paymentFromPayload(payload), nil
}

func (c *Client) GetPayment(ctx context.Context, sess entity.DoctorSession, id string) (*entity.Payment, error) {
	var env envelope
	if err := c.do(ctx, sess, call{
		method:   http.MethodGet,
		path:     "/doctor/payment/" + url.PathEscape(id),
		fallback: "Payment not found",
	}, &env); err != nil {
		return nil, err
	}

	p, ok := decodePayment(env.Data)
	if !ok {
		return nil, apperror.NewNotFoundError("Payment")
	}
	return p, nil
}

// UpdatePayment sends the edited payment. A success response without a
// payment record yields (nil, nil).
func (c *Client) UpdatePayment(ctx context.Context, sess entity.DoctorSession, id string, payload *entity.PaymentUpdatePayload) (*entity.Payment, error) {
	var env envelope
	if err := c.do(ctx, sess, call{
		method:   http.MethodPut,
		path:     "/doctor/payment/" + url.PathEscape(id),
		body:     payload,
		fallback: "Update failed",
	}, &env); err != nil {
		return nil, err
	}

	if p, ok := decodePayment(env.Data); ok {
		return p, nil
	}
	return nil, nil
}

func (c *Client) DeletePayment(ctx context.Context, sess entity.DoctorSession, id string) error {
	var env envelope
	if err := c.do(ctx, sess, call{
		method:   http.MethodDelete,
		path:     "/doctor/payment/" + url.PathEscape(id),
		fallback: "Failed to delete payment",
	}, &env); err != nil {
		return err
	}
	if env.Success == nil {
		return apperror.NewRejectedError(http.StatusBadGateway, messageOr(env.Message, "Failed to delete payment"))
	}
	return nil
}

func (c *Client) ListPayments(ctx context.Context, sess entity.DoctorSession, filter entity.PaymentFilter) ([]entity.Payment, error) {
	query := url.Values{}
	if filter.PatientName != "" {
		query.Set("patientName", filter.PatientName)
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Method != "" {
		query.Set("method", filter.Method)
	}
	if filter.StartDate != nil {
		query.Set("startDate", paymentQueryTime(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query.Set("endDate", paymentQueryTime(*filter.EndDate))
	}

	var raw json.RawMessage
	if err := c.do(ctx, sess, call{
		method:   http.MethodGet,
		path:     "/doctor/payments",
		query:    query,
		fallback: "Failed to fetch payments",
	}, &raw); err != nil {
		return nil, err
	}

	var dtos []paymentDTO
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &dtos); err != nil {
			return nil, apperror.NewRejectedError(http.StatusBadGateway, "Failed to fetch payments")
		}
	} else if len(trimmed) > 0 {
		var list paymentListDTO
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, apperror.NewRejectedError(http.StatusBadGateway, "Failed to fetch payments")
		}
		dtos = list.Data
	}

	payments := make([]entity.Payment, 0, len(dtos))
	for _, dto := range dtos {
		payments = append(payments, dto.toEntity())
	}
	return payments, nil
}

func (c *Client) PaymentSummary(ctx context.Context, sess entity.DoctorSession) (*entity.PaymentSummary, error) {
	var dto summaryDTO
	if err := c.do(ctx, sess, call{
		method:   http.MethodGet,
		path:     "/doctor/payment-summary",
		fallback: "Failed to fetch payment summary",
	}, &dto); err != nil {
		return nil, err
	}
	return &entity.PaymentSummary{
		TodayTotal: dto.TodayTotal,
		MonthTotal: dto.MonthTotal,
		YearTotal:  dto.YearTotal,
	}, nil
}

// InvalidateServices drops the cached catalog of one doctor.
func (c *Client) InvalidateServices(doctorID string) {
	c.cacheMu.Lock()
	delete(c.cache, doctorID)
	c.cacheMu.Unlock()
}

func (c *Client) cachedServices(doctorID string) ([]entity.CatalogService, bool) {
	if c.cacheTTL <= 0 {
		return nil, false
	}
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	cached, ok := c.cache[doctorID]
	if !ok || time.Now().After(cached.expiresAt) {
		return nil, false
	}
	return cloneServices(cached.services), true
}

func (c *Client) storeServices(doctorID string, services []entity.CatalogService) {
	if c.cacheTTL <= 0 {
		return
	}
	c.cacheMu.Lock()
	c.cache[doctorID] = &cachedCatalog{
		services:  cloneServices(services),
		expiresAt: time.Now().Add(c.cacheTTL),
	}
	c.cacheMu.Unlock()
}

func cloneServices(in []entity.CatalogService) []entity.CatalogService {
	return append([]entity.CatalogService(nil), in...)
}

func decodePayment(raw json.RawMessage) (*entity.Payment, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var dto paymentDTO
	if err := json.Unmarshal(raw, &dto); err != nil || dto.ID == "" {
		return nil, false
	}
	p := dto.toEntity()
	return &p, true
}

// IsCanceled reports whether err came from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
