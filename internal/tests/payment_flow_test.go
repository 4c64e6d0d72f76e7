package tests

import (
	"net/http"
	"net/url"
	"regexp"
	"sync/atomic"
	"time"

	"payswiftly/internal/domain"
)

func paymentValues(flowID, amount, phone string) url.Values {
	return url.Values{
		"flow_id":         {flowID},
		"amount":          {amount},
		"passenger_phone": {phone},
	}
}

func (s *FrontendSuite) TestPayment_PendingThenCompleted() {
	s.backend.ScriptStatuses(
		domain.TransactionStatusResponse{CollectionStatus: domain.CollectionStatusPending},
		domain.TransactionStatusResponse{CollectionStatus: domain.CollectionStatusPending},
		domain.TransactionStatusResponse{CollectionStatus: domain.CollectionStatusCompleted, AmountPaid: 500},
	)
	flowID := s.openPaymentForm("d1")

	code, body := s.post("/pay/d1", paymentValues(flowID, "500", "0712345678"))

	s.Equal(http.StatusOK, code)
	s.Contains(body, "KES 500")

	page := s.waitForPage("/pay/d1/flows/"+flowID, regexp.MustCompile(`Payment Successful`))
	s.Contains(page, "KES 500")
	s.Contains(page, "tx-1")
	s.GreaterOrEqual(atomic.LoadInt32(&s.backend.StatusCalls), int32(3))

	payments := s.backend.Payments()
	s.Require().Len(payments, 1)
	s.Equal("d1", payments[0].DriverID)
	s.Equal(500.0, payments[0].Amount)
	s.Equal("0712345678", payments[0].PassengerPhone)
	s.Equal(domain.GuestPassengerName, payments[0].PassengerName)
	s.Equal(domain.GuestPassengerEmail, payments[0].PassengerEmail)
}

func (s *FrontendSuite) TestPayment_PollingStopsAtTerminalStatus() {
	s.backend.ScriptStatuses(domain.TransactionStatusResponse{CollectionStatus: domain.CollectionStatusCompleted, AmountPaid: 200})
	flowID := s.openPaymentForm("d1")

	s.post("/pay/d1", paymentValues(flowID, "200", "0712345678"))
	s.waitForPage("/pay/d1/flows/"+flowID, regexp.MustCompile(`Payment Successful`))

	calls := atomic.LoadInt32(&s.backend.StatusCalls)
	s.Never(func() bool {
		return atomic.LoadInt32(&s.backend.StatusCalls) != calls
	}, 10*testPollInterval, testPollInterval)
}

func (s *FrontendSuite) TestPayment_FailedThenTryAgain() {
	s.backend.ScriptStatuses(domain.TransactionStatusResponse{
		CollectionStatus: domain.CollectionStatusFailed,
		Message:          "Request cancelled by user",
	})
	flowID := s.openPaymentForm("d1")
	flowPath := "/pay/d1/flows/" + flowID

	s.post("/pay/d1", paymentValues(flowID, "300", "0712345678"))
	page := s.waitForPage(flowPath, regexp.MustCompile(`Payment Failed`))
	s.Contains(page, "Request cancelled by user")
	s.Contains(page, `id="retry-form"`)

	code, body := s.post(flowPath+"/reset", nil)

	s.Equal(http.StatusOK, code)
	s.Contains(body, `id="pay-form"`)
	s.Contains(body, `name="flow_id" value="`+flowID+`"`)
	s.Contains(body, `placeholder="e.g. 500" value=""`)
	s.Contains(body, `placeholder="07..." value=""`)
	s.Contains(body, "Pay KES 0")
	s.NotContains(body, "Payment Failed")
}

func (s *FrontendSuite) TestPayment_ValidationDetailIsShownOnForm() {
	s.backend.PayStatus = http.StatusUnprocessableEntity
	s.backend.PayBody = `{"detail":[{"msg":"phone required"},{"msg":"amount must be positive"}]}`
	flowID := s.openPaymentForm("d1")

	code, body := s.post("/pay/d1", paymentValues(flowID, "50", "0712"))

	s.Equal(http.StatusUnprocessableEntity, code)
	s.Contains(body, "phone required, amount must be positive")
	s.Contains(body, `id="pay-form"`)
	s.Contains(body, `value="0712"`)
	s.Zero(atomic.LoadInt32(&s.backend.StatusCalls))
}

func (s *FrontendSuite) TestPayment_InvalidFormIsNotSent() {
	flowID := s.openPaymentForm("d1")

	code, body := s.post("/pay/d1", paymentValues(flowID, "0", ""))

	s.Equal(http.StatusBadRequest, code)
	s.Contains(body, `id="pay-form"`)
	s.Zero(atomic.LoadInt32(&s.backend.PayCalls))
}

func (s *FrontendSuite) TestPayment_SecondSubmitDoesNotPayTwice() {
	flowID := s.openPaymentForm("d1")

	s.post("/pay/d1", paymentValues(flowID, "100", "0712345678"))
	code, body := s.post("/pay/d1", paymentValues(flowID, "100", "0712345678"))

	s.Equal(http.StatusOK, code)
	s.Contains(body, "Request Sent!")
	s.Equal(int32(1), atomic.LoadInt32(&s.backend.PayCalls))
}

func (s *FrontendSuite) TestPayment_UnknownDriver() {
	code, body := s.get("/pay/nobody")

	s.Equal(http.StatusNotFound, code)
	s.Contains(body, "Driver not found")
}

func (s *FrontendSuite) TestPayment_FlowOfAnotherDriverIsHidden() {
	s.backend.AddDriver(domain.Driver{ID: "d2", Name: "Achieng"})
	flowID := s.openPaymentForm("d1")
	s.post("/pay/d1", paymentValues(flowID, "100", "0712345678"))

	code, _ := s.get("/pay/d2/flows/" + flowID)
	s.Equal(http.StatusNotFound, code)

	code, _ = s.post("/pay/d2", paymentValues(flowID, "100", "0712345678"))
	s.Equal(http.StatusNotFound, code)
	s.Equal(int32(1), atomic.LoadInt32(&s.backend.PayCalls))
}

func (s *FrontendSuite) TestPayment_FormPageHoldsNoFlowUntilSubmitted() {
	flowID := s.openPaymentForm("d1")
	s.NotEqual(flowID, s.openPaymentForm("d1"))

	code, _ := s.get("/pay/d1/flows/" + flowID)
	s.Equal(http.StatusNotFound, code)

	s.post("/pay/d1", paymentValues(flowID, "100", "0712345678"))
	code, body := s.get("/pay/d1/flows/" + flowID)
	s.Equal(http.StatusOK, code)
	s.Contains(body, "Request Sent!")
}

func (s *FrontendSuite) TestPayment_MalformedFlowIDIsRejected() {
	code, _ := s.post("/pay/d1", paymentValues("../../etc", "100", "0712345678"))

	s.Equal(http.StatusNotFound, code)
	s.Zero(atomic.LoadInt32(&s.backend.PayCalls))
}

func (s *FrontendSuite) TestPayment_DroppedLiveViewThenReloadCompletes() {
	flowID := s.openPaymentForm("d1")
	flowPath := "/pay/d1/flows/" + flowID
	s.post("/pay/d1", paymentValues(flowID, "500", "0712345678"))

	conn := s.dialFlow(flowID)
	s.Equal("pending", s.readPhase(conn))
	s.Require().NoError(conn.Close())
	s.waitForPollingToStop()

	s.backend.ScriptStatuses(domain.TransactionStatusResponse{CollectionStatus: domain.CollectionStatusCompleted, AmountPaid: 500})

	page := s.waitForPage(flowPath, regexp.MustCompile(`Payment Successful`))
	s.Contains(page, "KES 500")
}

func (s *FrontendSuite) TestPayment_DroppedLiveViewThenReconnectCompletes() {
	flowID := s.openPaymentForm("d1")
	s.post("/pay/d1", paymentValues(flowID, "500", "0712345678"))

	conn := s.dialFlow(flowID)
	s.Equal("pending", s.readPhase(conn))
	s.Require().NoError(conn.Close())
	s.waitForPollingToStop()

	s.backend.ScriptStatuses(domain.TransactionStatusResponse{CollectionStatus: domain.CollectionStatusCompleted, AmountPaid: 500})
	conn = s.dialFlow(flowID)
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.readPhase(conn) == "completed" {
			return
		}
	}
	s.Fail("reconnected view never saw the payment complete")
}

func (s *FrontendSuite) TestPayment_PendingPageReloadsWhenLiveViewDrops() {
	flowID := s.openPaymentForm("d1")

	_, body := s.post("/pay/d1", paymentValues(flowID, "500", "0712345678"))

	s.Contains(body, "ws.onclose")
}
