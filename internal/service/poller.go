package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"payswiftly/internal/domain"
	"payswiftly/internal/observability"
	"payswiftly/internal/schedule"
)

// DefaultPollInterval is the delay between two status queries.
const DefaultPollInterval = 3 * time.Second

// StatusPoller follows transactions until the backend reports a terminal collection status.
type StatusPoller struct {
	api      StatusAPI
	interval time.Duration
	log      *logrus.Entry
}

// NewStatusPoller creates a new StatusPoller. A non-positive interval falls back to DefaultPollInterval.
func NewStatusPoller(api StatusAPI, interval time.Duration, logger *logrus.Logger) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &StatusPoller{
		api:      api,
		interval: interval,
		log:      logger.WithField("component", "poller"),
	}
}

// Interval returns the delay between status queries.
func (p *StatusPoller) Interval() time.Duration {
	return p.interval
}

// TrackerState is a snapshot of a tracked transaction.
type TrackerState struct {
	TransactionID string
	Status        domain.CollectionStatus
	Polls         int
	// Last is the most recent successful status response, nil before the first one.
	Last *domain.TransactionStatusResponse
}

// Tracker is the local state machine of one transaction: pending until the
// first completed or failed answer, after which it never changes again.
type Tracker struct {
	poller        *StatusPoller
	task          *schedule.Task
	transactionID string

	mu          sync.Mutex
	state       TrackerState
	subscribers map[chan TrackerState]struct{}
}

// Track starts polling transactionID. The tracker is pending when returned;
// the first query is sent one interval later. Polling stops on a terminal
// status, on Cancel or when ctx ends.
func (p *StatusPoller) Track(ctx context.Context, transactionID string) (*Tracker, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrInvalidTransactionID
	}

	t := &Tracker{
		poller:        p,
		transactionID: transactionID,
		state: TrackerState{
			TransactionID: transactionID,
			Status:        domain.CollectionStatusPending,
		},
		subscribers: make(map[chan TrackerState]struct{}),
	}

	observability.ActiveTrackers.Inc()
	t.task = schedule.Every(ctx, p.interval, t.poll)
	go func() {
		<-t.task.Done()
		observability.ActiveTrackers.Dec()
	}()

	p.log.WithField("transaction_id", transactionID).Debug("tracking transaction")
	return t, nil
}

func (t *Tracker) poll(ctx context.Context) bool {
	resp, err := t.poller.api.GetTransactionStatus(ctx, t.transactionID)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		// A failed query is indistinguishable from still pending.
		observability.StatusPollsTotal.WithLabelValues("error").Inc()
		t.poller.log.WithError(err).WithField("transaction_id", t.transactionID).Warn("status query failed")
		return true
	}

	return t.apply(resp)
}

// apply records resp and reports whether polling should continue.
func (t *Tracker) apply(resp *domain.TransactionStatusResponse) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Status.IsTerminal() {
		return false
	}

	t.state.Polls++
	t.state.Last = resp

	if !resp.CollectionStatus.IsTerminal() {
		observability.StatusPollsTotal.WithLabelValues(string(domain.CollectionStatusPending)).Inc()
		return true
	}

	t.state.Status = resp.CollectionStatus
	observability.StatusPollsTotal.WithLabelValues(string(resp.CollectionStatus)).Inc()
	observability.PaymentOutcomesTotal.WithLabelValues(string(resp.CollectionStatus)).Inc()
	t.poller.log.WithFields(logrus.Fields{
		"transaction_id": t.transactionID,
		"status":         resp.CollectionStatus,
		"polls":          t.state.Polls,
	}).Info("payment reached terminal state")

	t.notifyLocked()
	return false
}

// notifyLocked hands the current state to every subscriber, replacing any
// snapshot it has not read yet. Must be called with t.mu held.
func (t *Tracker) notifyLocked() {
	snapshot := t.state
	for ch := range t.subscribers {
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

// State returns the current snapshot.
func (t *Tracker) State() TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// TransactionID returns the tracked transaction.
func (t *Tracker) TransactionID() string {
	return t.transactionID
}

// Status returns the current collection status.
func (t *Tracker) Status() domain.CollectionStatus {
	return t.State().Status
}

// Subscribe returns a channel receiving the state after every transition.
// Only the latest unread snapshot is kept. Call the returned func to unsubscribe.
func (t *Tracker) Subscribe() (<-chan TrackerState, func()) {
	ch := make(chan TrackerState, 1)

	t.mu.Lock()
	t.subscribers[ch] = struct{}{}
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subscribers, ch)
			t.mu.Unlock()
		})
	}
}

// Cancel stops polling. Safe to call more than once.
func (t *Tracker) Cancel() {
	t.task.Cancel()
}

// Done is closed once polling has stopped.
func (t *Tracker) Done() <-chan struct{} {
	return t.task.Done()
}

// Stopped reports whether polling has stopped, for whatever reason.
func (t *Tracker) Stopped() bool {
	return t.task.Stopped()
}
