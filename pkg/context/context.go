package context

import "context"

type ContextKey string

var (
	RequestIDKey     = ContextKey("X-Request-Id")
	MethodKey        = ContextKey("X-Method")
	RouteKey         = ContextKey("X-Route")
	RemoteIPKey      = ContextKey("X-Remote-Ip")
	IdentityRefKey   = ContextKey("X-Identity-Ref")
	IdentityNameKey  = ContextKey("X-Identity-Name")
	IdentityEmailKey = ContextKey("X-Identity-Email")
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	value, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, MethodKey, method)
}

func GetMethod(ctx context.Context) string {
	value, ok := ctx.Value(MethodKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, RouteKey, route)
}

func GetRoute(ctx context.Context) string {
	value, ok := ctx.Value(RouteKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetRemoteIP(ctx context.Context, remoteIP string) context.Context {
	return context.WithValue(ctx, RemoteIPKey, remoteIP)
}

func GetRemoteIP(ctx context.Context) string {
	value, ok := ctx.Value(RemoteIPKey).(string)
	if !ok {
		return ""
	}
	return value
}

// SetIdentityRef stores the verified external identity reference (the OpenID
// URL supplied by the upstream identity provider).
func SetIdentityRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, IdentityRefKey, ref)
}

func GetIdentityRef(ctx context.Context) string {
	value, ok := ctx.Value(IdentityRefKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetIdentityName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, IdentityNameKey, name)
}

func GetIdentityName(ctx context.Context) string {
	value, ok := ctx.Value(IdentityNameKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetIdentityEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, IdentityEmailKey, email)
}

func GetIdentityEmail(ctx context.Context) string {
	value, ok := ctx.Value(IdentityEmailKey).(string)
	if !ok {
		return ""
	}
	return value
}
