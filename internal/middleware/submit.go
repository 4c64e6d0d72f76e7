package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	internalRedis "payswiftly/internal/redis"
	"payswiftly/internal/service"
)

const (
	submitFlowField = "flow_id"
	submitLockTTL   = 30 * time.Second
)

// SubmitGuard lets a single submission per payment flow through at a time,
// across every instance sharing locks. Requests without a flow_id form value
// pass unguarded. onReject renders the rejected request.
func SubmitGuard(locks internalRedis.LockStoreInterface, onReject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to form submissions.
		if locks == nil || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.PostForm(submitFlowField)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		ok, err := locks.Acquire(ctx, key, submitLockTTL)
		if err != nil {
			// Redis error - the flow still rejects duplicates within this process.
			c.Next()
			return
		}
		if !ok {
			_ = c.Error(service.ErrSubmissionInFlight)
			onReject(c)
			c.Abort()
			return
		}
		defer func() {
			_ = locks.Release(context.WithoutCancel(ctx), key)
		}()

		c.Next()
	}
}
