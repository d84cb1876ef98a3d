package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/piatra/agenda-politicieni/pkg/context"
)

const (
	// HeaderIdentityRef carries the verified OpenID URL of the caller,
	// set by the upstream identity provider gateway.
	HeaderIdentityRef = "X-Identity-Ref"
	// HeaderIdentityName is the display name asserted by the provider
	HeaderIdentityName = "X-Identity-Name"
	// HeaderIdentityEmail is the email asserted by the provider
	HeaderIdentityEmail = "X-Identity-Email"
)

// Context propagates request metadata and the pre-authenticated identity
// into the request context. Authentication itself happens upstream; this
// service trusts the identity headers it is handed.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, req.URL.Path)
			ctx = context.SetRemoteIP(ctx, c.RealIP())
			ctx = context.SetIdentityRef(ctx, req.Header.Get(HeaderIdentityRef))
			ctx = context.SetIdentityName(ctx, req.Header.Get(HeaderIdentityName))
			ctx = context.SetIdentityEmail(ctx, req.Header.Get(HeaderIdentityEmail))

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
