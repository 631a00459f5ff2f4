package service

import (
	"context"
	"sync"
	"time"

	"github.com/sangkips/clinic-billing/internal/domain/billing"
	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/sangkips/clinic-billing/internal/domain/enum"
	"github.com/sangkips/clinic-billing/internal/domain/repository"
	"github.com/sangkips/clinic-billing/pkg/apperror"
	"github.com/sangkips/clinic-billing/pkg/utils"
	"go.uber.org/zap"
)

// ErrSubmissionInProgress is returned for a submit while another is in flight.
var ErrSubmissionInProgress = apperror.NewValidationError("submission already in progress")

// DefaultsProvider resolves the invoice defaults of a doctor.
type DefaultsProvider interface {
	GetInvoiceDefaults(ctx context.Context, ownerID string) (entity.InvoiceDefaults, error)
}

// SubmitHook runs after a payment was created from a draft.
type SubmitHook func(ctx context.Context, sess entity.DoctorSession, draft *entity.InvoiceDraft, payment *entity.Payment)

// EditorSession is one open invoice editing surface.
type EditorSession struct {
	mu            sync.Mutex
	id            string
	owner         entity.DoctorSession
	state         enum.DraftState
	draft         *entity.InvoiceDraft
	catalog       []entity.CatalogService
	patients      []entity.Patient
	lockedPatient bool
	lastErr       error
	lastSeen      time.Time

	// ctx is canceled when the session closes; every background task
	// started for the session derives from it.
	ctx    context.Context
	cancel context.CancelFunc
	loaded chan struct{}
}

// DraftView is what callers see of a session.
type DraftView struct {
	ID            string               `json:"id"`
	State         enum.DraftState      `json:"state"`
	Draft         *entity.InvoiceDraft `json:"draft"`
	Amounts       []float64            `json:"amounts"`
	Totals        billing.Totals       `json:"totals"`
	LockedPatient bool                 `json:"locked_patient"`
	Loading       bool                 `json:"loading"`
	LastError     string               `json:"last_error,omitempty"`
}

// OpenInput configures a new session.
type OpenInput struct {
	PatientID   string
	LockPatient bool
}

// DetailsInput carries the invoice level fields. Nil fields are left as is.
type DetailsInput struct {
	Currency        *string
	DiscountPercent *float64
	TaxPercent      *float64
	Method          *string
	Notes           *string
	StartDate       *time.Time
	EndDate         *time.Time
}

// EditorConfig holds the editor settings.
type EditorConfig struct {
	Defaults entity.InvoiceDefaults
	TTL      time.Duration
}

// EditorService owns the in-memory registry of editing sessions.
type EditorService struct {
	backend  repository.PracticeBackend
	prefs    DefaultsProvider
	calc     *billing.Calculator
	logger   *zap.Logger
	cfg      EditorConfig
	onSubmit SubmitHook
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*EditorSession
}

// NewEditorService creates a new editor service. prefs may be nil.
func NewEditorService(
	backend repository.PracticeBackend,
	prefs DefaultsProvider,
	calc *billing.Calculator,
	cfg EditorConfig,
	logger *zap.Logger,
) *EditorService {
	return &EditorService{
		backend:  backend,
		prefs:    prefs,
		calc:     calc,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*EditorSession),
	}
}

// OnSubmit registers the completion callback.
func (s *EditorService) OnSubmit(hook SubmitHook) {
	s.onSubmit = hook
}

// Calculator returns the calculator shared by every view of a draft.
func (s *EditorService) Calculator() *billing.Calculator {
	return s.calc
}

// Open starts a session with the default draft and begins loading the
// catalog and patient list in the background.
func (s *EditorService) Open(ctx context.Context, sess entity.DoctorSession, in OpenInput) (*DraftView, error) {
	defaults := s.cfg.Defaults
	if s.prefs != nil {
		d, err := s.prefs.GetInvoiceDefaults(ctx, sess.DoctorID)
		if err != nil {
			s.logger.Warn("failed to load invoice defaults", zap.String("doctor_id", sess.DoctorID), zap.Error(err))
		} else {
			defaults = d
		}
	}

	if in.LockPatient && in.PatientID == "" {
		return nil, apperror.NewValidationError("A patient is required to lock the invoice")
	}

	draft := billing.NewDraft(s.now(), defaults.Currency, defaults.Method)
	if in.PatientID != "" {
		draft.Patient = &entity.Patient{ID: in.PatientID}
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	es := &EditorSession{
		id:            utils.NewUUID().String(),
		owner:         sess,
		state:         enum.DraftStateOpen,
		draft:         draft,
		lockedPatient: in.LockPatient,
		lastSeen:      s.now(),
		ctx:           sessCtx,
		cancel:        cancel,
		loaded:        make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[es.id] = es
	s.mu.Unlock()

	go s.load(es)

	s.logger.Info("draft opened",
		zap.String("draft_id", es.id),
		zap.String("doctor_id", sess.DoctorID),
		zap.Bool("locked_patient", in.LockPatient),
	)

	es.mu.Lock()
	defer es.mu.Unlock()
	return s.viewLocked(es), nil
}

// load fetches the catalog and patients. Results that arrive after the
// session closed are dropped.
func (s *EditorService) load(es *EditorSession) {
	defer close(es.loaded)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		services, err := s.backend.ListServices(es.ctx, es.owner)

		es.mu.Lock()
		defer es.mu.Unlock()
		if es.state == enum.DraftStateClosed {
			return
		}
		if err != nil {
			s.logger.Warn("catalog fetch failed", zap.String("draft_id", es.id), zap.Error(err))
			return
		}
		es.catalog = services
	}()

	go func() {
		defer wg.Done()
		patients, err := s.backend.ListPatients(es.ctx, es.owner)

		es.mu.Lock()
		defer es.mu.Unlock()
		if es.state == enum.DraftStateClosed {
			return
		}
		if err != nil {
			s.logger.Warn("patient fetch failed", zap.String("draft_id", es.id), zap.Error(err))
			return
		}
		es.patients = patients
		if p := es.draft.Patient; p != nil && p.FullName == "" {
			if full, ok := billing.FindPatient(patients, p.ID); ok {
				es.draft.Patient = &full
			}
		}
	}()

	wg.Wait()
}

// Get returns the current view of a session.
func (s *EditorService) Get(doctorID, draftID string) (*DraftView, error) {
	es, err := s.session(doctorID, draftID)
	if err != nil {
		return nil, err
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.state == enum.DraftStateClosed {
		return nil, apperror.NewNotFoundError("Draft")
	}
	es.lastSeen = s.now()
	return s.viewLocked(es), nil
}

// Close discards the draft and cancels its background work.
func (s *EditorService) Close(doctorID, draftID string) error {
	es, err := s.session(doctorID, draftID)
	if err != nil {
		return err
	}

	es.mu.Lock()
	es.state = enum.DraftStateClosed
	es.cancel()
	es.mu.Unlock()

	s.remove(es.id)
	s.logger.Info("draft closed", zap.String("draft_id", es.id))
	return nil
}

// AddItem appends a blank line item.
func (s *EditorService) AddItem(doctorID, draftID string) (*DraftView, entity.LineItem, error) {
	var item entity.LineItem
	view, err := s.edit(doctorID, draftID, func(es *EditorSession) error {
		item = billing.AddBlankItem(es.draft)
		return nil
	})
	return view, item, err
}

// UpdateItemField edits one field of a line item. Unknown ids are ignored.
func (s *EditorService) UpdateItemField(doctorID, draftID, itemID, field string, value any) (*DraftView, error) {
	return s.edit(doctorID, draftID, func(es *EditorSession) error {
		billing.UpdateField(es.draft, itemID, field, value)
		return nil
	})
}

// SelectCatalogService fills a line item from a catalog entry.
func (s *EditorService) SelectCatalogService(ctx context.Context, doctorID, draftID, itemID, serviceID string) (*DraftView, error) {
	es, err := s.session(doctorID, draftID)
	if err != nil {
		return nil, err
	}
	if err := waitLoaded(ctx, es); err != nil {
		return nil, err
	}

	return s.edit(doctorID, draftID, func(es *EditorSession) error {
		svc, ok := billing.FindService(es.catalog, serviceID)
		if !ok {
			return apperror.NewNotFoundError("Service")
		}
		if svc.Disabled {
			return apperror.NewValidationError("Service is disabled")
		}
		billing.SetFromCatalogSelection(es.draft, itemID, svc)
		return nil
	})
}

// RemoveItem drops every line item with the given id.
func (s *EditorService) RemoveItem(doctorID, draftID, itemID string) (*DraftView, error) {
	return s.edit(doctorID, draftID, func(es *EditorSession) error {
		billing.RemoveItem(es.draft, itemID)
		return nil
	})
}

// UpdateDetails sets invoice level fields.
func (s *EditorService) UpdateDetails(doctorID, draftID string, in DetailsInput) (*DraftView, error) {
	return s.edit(doctorID, draftID, func(es *EditorSession) error {
		d := es.draft
		if in.Currency != nil {
			d.Currency = *in.Currency
		}
		if in.DiscountPercent != nil {
			d.DiscountPercent = *in.DiscountPercent
		}
		if in.TaxPercent != nil {
			d.TaxPercent = *in.TaxPercent
		}
		if in.Method != nil {
			d.Method = *in.Method
		}
		if in.Notes != nil {
			d.Notes = *in.Notes
		}
		if in.StartDate != nil {
			d.StartDate = *in.StartDate
		}
		if in.EndDate != nil {
			d.EndDate = *in.EndDate
		}
		return nil
	})
}

// SelectPatient sets the billed patient unless the session locked it.
func (s *EditorService) SelectPatient(ctx context.Context, doctorID, draftID, patientID string) (*DraftView, error) {
	es, err := s.session(doctorID, draftID)
	if err != nil {
		return nil, err
	}
	if err := waitLoaded(ctx, es); err != nil {
		return nil, err
	}

	return s.edit(doctorID, draftID, func(es *EditorSession) error {
		if es.lockedPatient {
			return apperror.NewValidationError("Patient cannot be changed for this invoice")
		}
		p, ok := billing.FindPatient(es.patients, patientID)
		if !ok {
			return apperror.NewNotFoundError("Patient")
		}
		es.draft.Patient = &p
		return nil
	})
}

// SearchCatalog returns enabled catalog entries matching query.
func (s *EditorService) SearchCatalog(ctx context.Context, doctorID, draftID, query string) ([]entity.CatalogService, error) {
	es, err := s.session(doctorID, draftID)
	if err != nil {
		return nil, err
	}
	if err := waitLoaded(ctx, es); err != nil {
		return nil, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	if es.state == enum.DraftStateClosed {
		return nil, apperror.NewNotFoundError("Draft")
	}
	return billing.SearchCatalog(es.catalog, query), nil
}

// SearchPatients returns patients whose name matches query.
func (s *EditorService) SearchPatients(ctx context.Context, doctorID, draftID, query string) ([]entity.Patient, error) {
	es, err := s.session(doctorID, draftID)
	if err != nil {
		return nil, err
	}
	if err := waitLoaded(ctx, es); err != nil {
		return nil, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	if es.state == enum.DraftStateClosed {
		return nil, apperror.NewNotFoundError("Draft")
	}
	return billing.SearchPatients(es.patients, query), nil
}

// Snapshot returns an independent copy of the draft for rendering.
func (s *EditorService) Snapshot(doctorID, draftID string) (*entity.InvoiceDraft, error) {
	es, err := s.session(doctorID, draftID)
	if err != nil {
		return nil, err
	}
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.state == enum.DraftStateClosed {
		return nil, apperror.NewNotFoundError("Draft")
	}
	return billing.Snapshot(es.draft)
}

// Submit validates the draft and creates the payment. On failure the draft
// stays open with the error recorded; on success the session closes.
func (s *EditorService) Submit(ctx context.Context, sess entity.DoctorSession, draftID string) (*entity.Payment, error) {
	es, err := s.session(sess.DoctorID, draftID)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	switch es.state {
	case enum.DraftStateSubmitting:
		es.mu.Unlock()
		return nil, ErrSubmissionInProgress
	case enum.DraftStateClosed:
		es.mu.Unlock()
		return nil, apperror.NewNotFoundError("Draft")
	}
	if err := billing.ValidateForSubmission(es.draft); err != nil {
		es.lastErr = err
		es.mu.Unlock()
		return nil, err
	}
	payload := billing.BuildPaymentPayload(es.draft, s.calc)
	es.state = enum.DraftStateSubmitting
	es.lastErr = nil
	es.lastSeen = s.now()
	sessCtx := es.ctx
	es.mu.Unlock()

	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(sessCtx, cancel)
	payment, err := s.backend.CreatePayment(callCtx, sess, payload)
	stop()
	cancel()

	es.mu.Lock()
	if es.state == enum.DraftStateClosed {
		es.mu.Unlock()
		s.logger.Info("submission result dropped after close", zap.String("draft_id", es.id))
		return nil, apperror.NewConflictError("Draft was closed before the submission completed")
	}

	if err != nil {
		es.state = enum.DraftStateOpen
		es.lastErr = err
		es.mu.Unlock()
		s.logger.Warn("payment submission failed",
			zap.String("draft_id", es.id),
			zap.String("error_kind", string(apperror.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	submitted, snapErr := billing.Snapshot(es.draft)
	es.state = enum.DraftStateClosed
	es.cancel()
	es.mu.Unlock()
	s.remove(es.id)

	s.logger.Info("payment submitted",
		zap.String("draft_id", es.id),
		zap.String("payment_id", payment.ID),
		zap.Float64("amount", payload.Amount),
	)

	if s.onSubmit != nil && snapErr == nil {
		s.onSubmit(ctx, sess, submitted, payment)
	}
	return payment, nil
}

// StartCleanup expires idle sessions until ctx is done.
func (s *EditorService) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanup()
			}
		}
	}()
}

// cleanup closes sessions idle for longer than the TTL. Sessions with a
// submission in flight are kept.
func (s *EditorService) cleanup() int {
	if s.cfg.TTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.TTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, es := range s.sessions {
		es.mu.Lock()
		if es.state != enum.DraftStateSubmitting && es.lastSeen.Before(cutoff) {
			es.state = enum.DraftStateClosed
			es.cancel()
			delete(s.sessions, id)
			expired++
		}
		es.mu.Unlock()
	}
	if expired > 0 {
		s.logger.Info("expired idle drafts", zap.Int("count", expired))
	}
	return expired
}

// Active returns the number of open sessions.
func (s *EditorService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *EditorService) edit(doctorID, draftID string, fn func(es *EditorSession) error) (*DraftView, error) {
	es, err := s.session(doctorID, draftID)
	if err != nil {
		return nil, err
	}

	es.mu.Lock()
	defer es.mu.Unlock()
	switch es.state {
	case enum.DraftStateClosed:
		return nil, apperror.NewNotFoundError("Draft")
	case enum.DraftStateSubmitting:
		return nil, apperror.NewValidationError("Draft cannot be edited while it is being submitted")
	}

	es.lastSeen = s.now()
	if err := fn(es); err != nil {
		return nil, err
	}
	return s.viewLocked(es), nil
}

func (s *EditorService) session(doctorID, draftID string) (*EditorSession, error) {
	s.mu.RLock()
	es, ok := s.sessions[draftID]
	s.mu.RUnlock()
	if !ok || es.owner.DoctorID != doctorID {
		return nil, apperror.NewNotFoundError("Draft")
	}
	return es, nil
}

func (s *EditorService) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *EditorService) viewLocked(es *EditorSession) *DraftView {
	draft, err := billing.Snapshot(es.draft)
	if err != nil {
		draft = es.draft
	}

	amounts := make([]float64, len(draft.LineItems))
	for i, item := range draft.LineItems {
		amounts[i] = s.calc.Amount(item)
	}

	view := &DraftView{
		ID:            es.id,
		State:         es.state,
		Draft:         draft,
		Amounts:       amounts,
		Totals:        s.calc.Totals(draft),
		LockedPatient: es.lockedPatient,
	}
	select {
	case <-es.loaded:
	default:
		view.Loading = true
	}
	if es.lastErr != nil {
		view.LastError = es.lastErr.Error()
	}
	return view
}

func waitLoaded(ctx context.Context, es *EditorSession) error {
	select {
	case <-es.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
