package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"payswiftly/internal/domain"
	"payswiftly/internal/middleware"
	"payswiftly/internal/service"
)

// DashboardHandler handles the driver dashboard.
type DashboardHandler struct {
	loader  *service.DashboardLoader
	refresh time.Duration
	log     *logrus.Entry
}

// NewDashboardHandler creates a new DashboardHandler. refresh is the profile auto-refresh interval.
func NewDashboardHandler(loader *service.DashboardLoader, refresh time.Duration, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		loader:  loader,
		refresh: refresh,
		log:     logger.WithField("component", "dashboard_handler"),
	}
}

// ProfileMessage is pushed to an open dashboard when the profile changes.
type ProfileMessage struct {
	Driver             domain.Driver `json:"driver"`
	PayoutEligible     bool          `json:"payout_eligible"`
	AmountToPayout     float64       `json:"amount_to_payout"`
	PendingBalanceText string        `json:"pending_balance_display"`
	PaidBalanceText    string        `json:"paid_balance_display"`
	TotalEarningsText  string        `json:"total_earnings_display"`
	PayoutStatus       string        `json:"payout_status"`
}

func newProfileMessage(d domain.Driver) ProfileMessage {
	status := "Ready for payout"
	if !d.PayoutEligible() {
		status = "Need " + formatMoney(d.AmountToPayout()) + " more"
	}
	return ProfileMessage{
		Driver:             d,
		PayoutEligible:     d.PayoutEligible(),
		AmountToPayout:     d.AmountToPayout(),
		PendingBalanceText: formatMoney(d.PendingBalance),
		PaidBalanceText:    formatMoney(d.PaidBalance),
		TotalEarningsText:  formatMoney(d.TotalEarnings),
		PayoutStatus:       status,
	}
}

// Show handles GET /dashboard/:driver_id
func (h *DashboardHandler) Show(c *gin.Context) {
	dash, err := h.loader.Load(c.Request.Context(), middleware.SessionFrom(c), c.Param("driver_id"))
	if err != nil {
		_ = c.Error(err)
		c.HTML(mapErrorToHTTPStatus(err), "dashboard.html", gin.H{
			"Title": "Dashboard",
			"Error": err.Error(),
		})
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":           "Dashboard",
		"Dashboard":       dash,
		"PayoutThreshold": domain.PayoutThreshold,
	})
}

// Live handles GET /ws/dashboard/:driver_id
func (h *DashboardHandler) Live(c *gin.Context) {
	ctx := c.Request.Context()
	view, err := h.loader.Watch(ctx, middleware.SessionFrom(c), c.Param("driver_id"), h.refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	defer view.Close()

	updates, unsubscribe := view.Subscribe()
	defer unsubscribe()

	stream(c, h.log.WithField("driver_id", c.Param("driver_id")), "dashboard", updates, func(d domain.Driver) any {
		return newProfileMessage(d)
	})
}
