package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payswiftly/internal/domain"
	"payswiftly/internal/service"
)

// PaymentHandler handles the passenger payment pages.
type PaymentHandler struct {
	flows   *service.FlowRegistry
	drivers service.DriverAPI
	poll    time.Duration
	log     *logrus.Entry
}

// NewPaymentHandler creates a new PaymentHandler. poll is the status poll
// interval, reused as the refresh rate of the pending page without scripts.
func NewPaymentHandler(flows *service.FlowRegistry, drivers service.DriverAPI, poll time.Duration, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		flows:   flows,
		drivers: drivers,
		poll:    poll,
		log:     logger.WithField("component", "payment_handler"),
	}
}

// PaymentForm is the passenger payment form.
type PaymentForm struct {
	FlowID         string  `form:"flow_id" binding:"required"`
	Amount         float64 `form:"amount" binding:"required,min=1"`
	PassengerPhone string  `form:"passenger_phone" binding:"required"`
	PassengerName  string  `form:"passenger_name"`
	PassengerEmail string  `form:"passenger_email" binding:"omitempty,email"`
}

// FlowMessage is pushed to an open payment page when the flow changes.
type FlowMessage struct {
	Phase         service.FlowPhase `json:"phase"`
	TransactionID string            `json:"transaction_id,omitempty"`
	AmountPaid    float64           `json:"amount_paid"`
	Submitting    bool              `json:"submitting"`
	Error         string            `json:"error,omitempty"`
}

func newFlowMessage(s service.FlowSnapshot) FlowMessage {
	return FlowMessage{
		Phase:         s.Phase,
		TransactionID: s.TransactionID,
		AmountPaid:    s.AmountPaid(),
		Submitting:    s.Submitting,
		Error:         s.Error,
	}
}

func flowURL(driverID, flowID string) string {
	return "/pay/" + url.PathEscape(driverID) + "/flows/" + url.PathEscape(flowID)
}

// flowFor returns the flow named in the path, or ErrFlowNotFound when it belongs to another driver.
func (h *PaymentHandler) flowFor(c *gin.Context, flowID string) (*service.PaymentFlow, error) {
	flow, err := h.flows.Get(flowID)
	if err != nil {
		return nil, err
	}
	if driverID := c.Param("driver_id"); driverID != "" && driverID != flow.DriverID() {
		return nil, service.ErrFlowNotFound
	}
	return flow, nil
}

// renderForm renders the payment form of snapshot. A missing driver only hides the header.
func (h *PaymentHandler) renderForm(c *gin.Context, code int, snapshot service.FlowSnapshot) {
	var driver *domain.Driver
	if d, err := h.drivers.GetDriver(c.Request.Context(), snapshot.DriverID); err == nil {
		driver = d
	}
	c.HTML(code, "pay_form.html", gin.H{
		"Title":  "Pay your driver",
		"Driver": driver,
		"Flow":   snapshot,
	})
}

// ShowForm handles GET /pay/:driver_id
func (h *PaymentHandler) ShowForm(c *gin.Context) {
	driverID := c.Param("driver_id")

	driver, err := h.drivers.GetDriver(c.Request.Context(), driverID)
	if err != nil {
		_ = c.Error(err)
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"Title":   "Driver not found",
			"Heading": "Driver not found",
			"Error":   err.Error(),
			"BackURL": "/login",
		})
		return
	}

	// The flow itself is only allocated when the form is submitted.
	c.HTML(http.StatusOK, "pay_form.html", gin.H{
		"Title":  "Pay " + driver.Name,
		"Driver": driver,
		"Flow":   newFormSnapshot(uuid.NewString(), driver.ID),
	})
}

func newFormSnapshot(flowID, driverID string) service.FlowSnapshot {
	return service.FlowSnapshot{ID: flowID, DriverID: driverID, Phase: service.FlowPhaseForm}
}

// Submit handles POST /pay/:driver_id
func (h *PaymentHandler) Submit(c *gin.Context) {
	driverID := c.Param("driver_id")
	var form PaymentForm
	if bindErr := c.ShouldBind(&form); bindErr != nil {
		snapshot := newFormSnapshot(form.FlowID, driverID)
		if flow, err := h.flowFor(c, form.FlowID); err == nil {
			snapshot = flow.Snapshot()
		} else if _, err := uuid.Parse(form.FlowID); err != nil {
			snapshot.ID = uuid.NewString()
		}
		snapshot.Form = service.PaymentForm{Amount: form.Amount, PassengerPhone: form.PassengerPhone}
		snapshot.Error = bindingMessage(bindErr)
		h.renderForm(c, http.StatusBadRequest, snapshot)
		return
	}

	flow, err := h.flows.Open(form.FlowID, driverID)
	if err != nil {
		renderError(c, err, "/pay/"+url.PathEscape(driverID))
		return
	}

	err = flow.Submit(c.Request.Context(), service.PaymentForm{
		Amount:         form.Amount,
		PassengerPhone: form.PassengerPhone,
		PassengerName:  form.PassengerName,
		PassengerEmail: form.PassengerEmail,
	})
	switch {
	case err == nil, errors.Is(err, service.ErrPaymentAlreadySubmitted):
		c.Redirect(http.StatusSeeOther, flowURL(flow.DriverID(), flow.ID()))
	case errors.Is(err, service.ErrSubmissionInFlight):
		h.RejectDuplicate(c)
	default:
		_ = c.Error(err)
		h.renderForm(c, mapErrorToHTTPStatus(err), flow.Snapshot())
	}
}

// RejectDuplicate renders the answer to a submission made while another is in flight.
func (h *PaymentHandler) RejectDuplicate(c *gin.Context) {
	backURL := "/pay/" + url.PathEscape(c.Param("driver_id"))
	if flowID := c.PostForm("flow_id"); flowID != "" {
		backURL = flowURL(c.Param("driver_id"), flowID)
	}
	renderError(c, service.ErrSubmissionInFlight, backURL)
}

// ShowFlow handles GET /pay/:driver_id/flows/:flow_id
func (h *PaymentHandler) ShowFlow(c *gin.Context) {
	flow, err := h.flowFor(c, c.Param("flow_id"))
	if err != nil {
		renderError(c, err, "/pay/"+url.PathEscape(c.Param("driver_id")))
		return
	}

	snapshot := flow.View()
	if snapshot.Phase == service.FlowPhaseForm {
		h.renderForm(c, http.StatusOK, snapshot)
		return
	}

	c.HTML(http.StatusOK, "pay_flow.html", gin.H{
		"Title":          "Payment",
		"Flow":           snapshot,
		"RefreshSeconds": max(1, int(h.poll.Seconds()+0.5)),
	})
}

// Reset handles POST /pay/:driver_id/flows/:flow_id/reset
func (h *PaymentHandler) Reset(c *gin.Context) {
	flow, err := h.flowFor(c, c.Param("flow_id"))
	if err != nil {
		renderError(c, err, "/pay/"+url.PathEscape(c.Param("driver_id")))
		return
	}

	if err := flow.Reset(); err != nil {
		renderError(c, err, flowURL(flow.DriverID(), flow.ID()))
		return
	}

	c.Redirect(http.StatusSeeOther, flowURL(flow.DriverID(), flow.ID()))
}

// Live handles GET /ws/flows/:flow_id
func (h *PaymentHandler) Live(c *gin.Context) {
	flow, err := h.flowFor(c, c.Param("flow_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	updates, detach := flow.Attach()
	defer detach()

	stream(c, h.log.WithField("flow_id", flow.ID()), "payment", updates, func(s service.FlowSnapshot) any {
		return newFlowMessage(s)
	})
}
