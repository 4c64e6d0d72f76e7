package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payswiftly/internal/domain"
	"payswiftly/internal/schedule"
)

// FlowPhase is what the payment page currently shows.
type FlowPhase string

const (
	FlowPhaseForm      FlowPhase = "form"
	FlowPhasePending   FlowPhase = "pending"
	FlowPhaseCompleted FlowPhase = "completed"
	FlowPhaseFailed    FlowPhase = "failed"
)

// PaymentForm holds the values entered on the payment page.
type PaymentForm struct {
	Amount         float64
	PassengerPhone string
	PassengerName  string
	PassengerEmail string
}

// FlowSnapshot is a read-only copy of a flow for rendering.
type FlowSnapshot struct {
	ID         string
	DriverID   string
	Phase      FlowPhase
	Form       PaymentForm
	Submitting bool
	// Error is the message of the last failed submission, shown above the form.
	Error         string
	TransactionID string
	Initiation    *domain.PaymentInitiateResponse
	LastStatus    *domain.TransactionStatusResponse
}

// AmountPaid is the amount shown on the confirmation screen.
func (s FlowSnapshot) AmountPaid() float64 {
	switch {
	case s.LastStatus != nil && s.LastStatus.AmountPaid > 0:
		return s.LastStatus.AmountPaid
	case s.Initiation != nil && s.Initiation.Amount > 0:
		return s.Initiation.Amount
	default:
		return s.Form.Amount
	}
}

// PaymentFlow is one passenger's payment page: form, then pending while the
// charge is polled, then completed or failed.
type PaymentFlow struct {
	id       string
	driverID string
	ctx      context.Context
	payments *PaymentService
	poller   *StatusPoller
	log      *logrus.Entry
	now      func() time.Time

	mu          sync.Mutex
	phase       FlowPhase
	form        PaymentForm
	submitting  bool
	errMsg      string
	initiation  *domain.PaymentInitiateResponse
	lastStatus  *domain.TransactionStatusResponse
	tracker     *Tracker
	views       int
	lastSeen    time.Time
	subscribers map[chan FlowSnapshot]struct{}
}

// ID returns the flow identifier.
func (f *PaymentFlow) ID() string { return f.id }

// DriverID returns the driver being paid.
func (f *PaymentFlow) DriverID() string { return f.driverID }

// Submit initiates a payment with form. On failure the flow stays on the form
// and the error message is kept for display. On success the flow is pending
// and the transaction is polled.
func (f *PaymentFlow) Submit(ctx context.Context, form PaymentForm) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmissionInFlight
	}
	if f.phase != FlowPhaseForm {
		f.mu.Unlock()
		return ErrPaymentAlreadySubmitted
	}
	f.submitting = true
	f.form = form
	f.errMsg = ""
	f.touchLocked()
	f.notifyLocked()
	f.mu.Unlock()

	resp, err := f.payments.Initiate(ctx, domain.PaymentRequest{
		DriverID:       f.driverID,
		Amount:         form.Amount,
		PassengerPhone: form.PassengerPhone,
		PassengerName:  form.PassengerName,
		PassengerEmail: form.PassengerEmail,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	f.touchLocked()

	if err == nil {
		var tracker *Tracker
		tracker, err = f.poller.Track(f.ctx, resp.TransactionID)
		if err == nil {
			f.phase = FlowPhasePending
			f.initiation = resp
			f.startLocked(tracker)
		}
	}
	if err != nil {
		f.errMsg = err.Error()
	}
	f.notifyLocked()
	return err
}

// Reset returns a finished or failed flow to an empty form. Tracking of the
// previous transaction stops; a new submission creates a new transaction.
func (f *PaymentFlow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitting {
		return ErrSubmissionInFlight
	}
	if f.tracker != nil {
		f.tracker.Cancel()
		f.tracker = nil
	}
	f.phase = FlowPhaseForm
	f.form = PaymentForm{}
	f.errMsg = ""
	f.initiation = nil
	f.lastStatus = nil
	f.touchLocked()
	f.notifyLocked()
	return nil
}

// Attach registers an open view of the flow and returns its update channel.
// A pending flow whose polling stopped because every view had closed resumes
// polling. Call detach when the view closes; the last detach stops polling.
func (f *PaymentFlow) Attach() (updates <-chan FlowSnapshot, detach func()) {
	ch := make(chan FlowSnapshot, 1)

	f.mu.Lock()
	f.views++
	f.touchLocked()
	f.ensureTrackingLocked()
	ch <- f.snapshotLocked()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subscribers, ch)
			f.views--
			f.touchLocked()
			if f.views == 0 && f.tracker != nil {
				f.tracker.Cancel()
			}
		})
	}
}

// View returns the current state of the flow for a page load. It counts as
// activity, and a pending flow whose polling stopped when its last live view
// dropped resumes polling.
func (f *PaymentFlow) View() FlowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchLocked()
	f.ensureTrackingLocked()
	return f.snapshotLocked()
}

// Snapshot returns the current state of the flow.
func (f *PaymentFlow) Snapshot() FlowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Close stops any polling. The flow is no longer usable afterwards.
func (f *PaymentFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tracker != nil {
		f.tracker.Cancel()
	}
}

func (f *PaymentFlow) idle(now time.Time, timeout time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.views == 0 && !f.submitting && now.Sub(f.lastSeen) >= timeout
}

// ensureTrackingLocked restarts polling of a pending flow whose tracker was
// cancelled. A tracker that stopped on a final status is applied instead.
func (f *PaymentFlow) ensureTrackingLocked() {
	if f.phase != FlowPhasePending {
		return
	}
	if f.tracker != nil {
		if !f.tracker.Stopped() {
			return
		}
		if state := f.tracker.State(); state.Status.IsTerminal() {
			f.applyLocked(state)
			return
		}
	}
	f.resumeLocked()
}

func (f *PaymentFlow) resumeLocked() {
	tracker, err := f.poller.Track(f.ctx, f.initiation.TransactionID)
	if err != nil {
		f.log.WithError(err).Warn("could not resume tracking")
		return
	}
	f.log.WithField("transaction_id", tracker.TransactionID()).Debug("resumed tracking")
	f.startLocked(tracker)
}

func (f *PaymentFlow) startLocked(tracker *Tracker) {
	f.tracker = tracker
	go f.follow(tracker)
}

// follow copies tracker transitions into the flow until the tracker stops.
func (f *PaymentFlow) follow(tracker *Tracker) {
	updates, unsubscribe := tracker.Subscribe()
	defer unsubscribe()

	for {
		select {
		case state := <-updates:
			f.applyTracker(tracker, state)
		case <-tracker.Done():
			f.applyTracker(tracker, tracker.State())
			return
		}
	}
}

func (f *PaymentFlow) applyTracker(tracker *Tracker, state TrackerState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Reset or a resumed tracker replaced this one.
	if f.tracker != tracker {
		return
	}
	f.applyLocked(state)
}

func (f *PaymentFlow) applyLocked(state TrackerState) {
	if f.phase != FlowPhasePending {
		return
	}
	if state.Last != nil {
		f.lastStatus = state.Last
	}

	switch state.Status {
	case domain.CollectionStatusCompleted:
		f.phase = FlowPhaseCompleted
	case domain.CollectionStatusFailed:
		f.phase = FlowPhaseFailed
	default:
		return
	}
	f.notifyLocked()
}

func (f *PaymentFlow) touchLocked() {
	f.lastSeen = f.now()
}

func (f *PaymentFlow) snapshotLocked() FlowSnapshot {
	s := FlowSnapshot{
		ID:         f.id,
		DriverID:   f.driverID,
		Phase:      f.phase,
		Form:       f.form,
		Submitting: f.submitting,
		Error:      f.errMsg,
		Initiation: f.initiation,
		LastStatus: f.lastStatus,
	}
	if f.initiation != nil {
		s.TransactionID = f.initiation.TransactionID
	}
	return s
}

func (f *PaymentFlow) notifyLocked() {
	snapshot := f.snapshotLocked()
	for ch := range f.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

// FlowRegistry owns the payment flows of this process.
type FlowRegistry struct {
	ctx         context.Context
	payments    *PaymentService
	poller      *StatusPoller
	idleTimeout time.Duration
	log         *logrus.Entry
	now         func() time.Time
	reaper      *schedule.Task

	mu    sync.Mutex
	flows map[string]*PaymentFlow
}

// NewFlowRegistry creates a new FlowRegistry. Flows poll under ctx. Flows with
// no open view for idleTimeout are dropped; a non-positive idleTimeout keeps
// them forever.
func NewFlowRegistry(ctx context.Context, payments *PaymentService, poller *StatusPoller, idleTimeout time.Duration, logger *logrus.Logger) *FlowRegistry {
	r := &FlowRegistry{
		ctx:         ctx,
		payments:    payments,
		poller:      poller,
		idleTimeout: idleTimeout,
		log:         logger.WithField("component", "flows"),
		now:         time.Now,
		flows:       make(map[string]*PaymentFlow),
	}
	if idleTimeout > 0 {
		r.reaper = schedule.Every(ctx, idleTimeout/2, func(ctx context.Context) bool {
			r.Reap()
			return true
		})
	}
	return r
}

// Create starts a new flow on the form for driverID.
func (r *FlowRegistry) Create(driverID string) (*PaymentFlow, error) {
	return r.Open(uuid.NewString(), driverID)
}

// Open returns the flow with id, creating it on the form when it does not
// exist yet. Payment pages hand out ids without allocating a flow, so one is
// only held once the passenger submits. An id that is not a uuid or that
// belongs to another driver yields ErrFlowNotFound.
func (r *FlowRegistry) Open(id, driverID string) (*PaymentFlow, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrFlowNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.flows[id]; ok {
		if f.driverID != driverID {
			return nil, ErrFlowNotFound
		}
		return f, nil
	}

	f := &PaymentFlow{
		id:          id,
		driverID:    driverID,
		ctx:         r.ctx,
		payments:    r.payments,
		poller:      r.poller,
		now:         r.now,
		phase:       FlowPhaseForm,
		subscribers: make(map[chan FlowSnapshot]struct{}),
	}
	f.log = r.log.WithFields(logrus.Fields{"flow_id": id, "driver_id": driverID})
	f.lastSeen = r.now()
	r.flows[id] = f
	return f, nil
}

// Get returns the flow with id.
func (r *FlowRegistry) Get(id string) (*PaymentFlow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	return f, nil
}

// Len returns the number of live flows.
func (r *FlowRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

// Reap drops flows that have been idle for the idle timeout and returns how many were dropped.
func (r *FlowRegistry) Reap() int {
	if r.idleTimeout <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	var idle []*PaymentFlow
	for id, f := range r.flows {
		if f.idle(now, r.idleTimeout) {
			idle = append(idle, f)
			delete(r.flows, id)
		}
	}
	r.mu.Unlock()

	for _, f := range idle {
		f.Close()
	}
	if len(idle) > 0 {
		r.log.WithField("count", len(idle)).Debug("reaped idle payment flows")
	}
	return len(idle)
}

// Close stops the reaper and every flow.
func (r *FlowRegistry) Close() {
	if r.reaper != nil {
		r.reaper.Cancel()
	}

	r.mu.Lock()
	flows := r.flows
	r.flows = make(map[string]*PaymentFlow)
	r.mu.Unlock()

	for _, f := range flows {
		f.Close()
	}
}
