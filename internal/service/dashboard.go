package service

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"payswiftly/internal/apiclient"
	"payswiftly/internal/domain"
	"payswiftly/internal/schedule"
)

// DefaultDashboardRefresh is the delay between two profile refreshes.
const DefaultDashboardRefresh = 30 * time.Second

// Dashboard is what the driver dashboard shows.
type Dashboard struct {
	Driver       *domain.Driver
	Transactions []domain.Transaction
}

// DashboardLoader fetches driver dashboards.
type DashboardLoader struct {
	drivers DriverAPIFactory
	log     *logrus.Entry
}

// NewDashboardLoader creates a new DashboardLoader.
func NewDashboardLoader(drivers DriverAPIFactory, logger *logrus.Logger) *DashboardLoader {
	return &DashboardLoader{
		drivers: drivers,
		log:     logger.WithField("component", "dashboard"),
	}
}

// Load fetches the profile and the transactions of driverID concurrently.
// If either request fails the whole load fails with that error.
func (l *DashboardLoader) Load(ctx context.Context, tokens apiclient.TokenSource, driverID string) (*Dashboard, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	api := l.drivers(tokens)

	var (
		driver       *domain.Driver
		transactions []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		driver, err = api.GetDriver(gctx, driverID)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = api.GetDriverTransactions(gctx, driverID)
		return err
	})
	if err := g.Wait(); err != nil {
		l.log.WithError(err).WithField("driver_id", driverID).Warn("dashboard load failed")
		return nil, err
	}

	return &Dashboard{Driver: driver, Transactions: transactions}, nil
}

// DashboardView is an open dashboard whose profile is refreshed in the background.
type DashboardView struct {
	api      DriverAPI
	driverID string
	log      *logrus.Entry
	task     *schedule.Task

	mu          sync.Mutex
	driver      *domain.Driver
	subscribers map[chan domain.Driver]struct{}
}

// Watch fetches the profile of driverID and refreshes it every interval until
// the view is closed or ctx ends. Only the profile is refreshed, never the
// transactions. A failed refresh is logged and the timer keeps running.
func (l *DashboardLoader) Watch(ctx context.Context, tokens apiclient.TokenSource, driverID string, interval time.Duration) (*DashboardView, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if interval <= 0 {
		interval = DefaultDashboardRefresh
	}

	v := &DashboardView{
		api:         l.drivers(tokens),
		driverID:    driverID,
		log:         l.log.WithField("driver_id", driverID),
		subscribers: make(map[chan domain.Driver]struct{}),
	}
	if _, err := v.Refresh(ctx); err != nil {
		return nil, err
	}

	v.task = schedule.Every(ctx, interval, func(ctx context.Context) bool {
		if _, err := v.Refresh(ctx); err != nil && ctx.Err() == nil {
			v.log.WithError(err).Warn("profile refresh failed")
		}
		return true
	})
	return v, nil
}

// Refresh re-fetches the profile and reports whether it changed. Subscribers
// are only notified of changes, so refreshing an unchanged profile is a no-op.
func (v *DashboardView) Refresh(ctx context.Context) (bool, error) {
	driver, err := v.api.GetDriver(ctx, v.driverID)
	if err != nil {
		return false, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.driver != nil && reflect.DeepEqual(v.driver, driver) {
		return false, nil
	}
	v.driver = driver
	for ch := range v.subscribers {
		select {
		case ch <- *driver:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- *driver
		}
	}
	return true, nil
}

// Driver returns the current profile.
func (v *DashboardView) Driver() domain.Driver {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.driver
}

// Subscribe returns a channel receiving the profile whenever it changes.
func (v *DashboardView) Subscribe() (<-chan domain.Driver, func()) {
	ch := make(chan domain.Driver, 1)

	v.mu.Lock()
	v.subscribers[ch] = struct{}{}
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subscribers, ch)
			v.mu.Unlock()
		})
	}
}

// Close stops the refresh timer. Safe to call more than once.
func (v *DashboardView) Close() {
	v.task.Cancel()
}

// Done is closed once the refresh timer has stopped.
func (v *DashboardView) Done() <-chan struct{} {
	return v.task.Done()
}
