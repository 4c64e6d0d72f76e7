package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes tags the transaction started by nrgin with the request ID
// and the driver and flow being served, and records handler errors on it.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if requestID := c.GetString(requestIDKey); requestID != "" {
			txn.AddAttribute("request_id", requestID)
		}
		for _, param := range []string{"driver_id", "flow_id"} {
			if v := c.Param(param); v != "" {
				txn.AddAttribute(param, v)
			}
		}

		c.Next()

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
