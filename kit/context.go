package kit

import "context"

type contextKey string

const (
	RequestIDKey  contextKey = "kit_request_id"
	OrderRefKey   contextKey = "kit_order_ref"
	CustomerIDKey contextKey = "kit_customer_id"
	TransportKey  contextKey = "kit_transport" // "mcp_stdio", "http"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

func WithOrderRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, OrderRefKey, ref)
}
func GetOrderRef(ctx context.Context) string {
	v, _ := ctx.Value(OrderRefKey).(string)
	return v
}

func WithCustomerID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CustomerIDKey, id)
}
func GetCustomerID(ctx context.Context) string {
	v, _ := ctx.Value(CustomerIDKey).(string)
	return v
}

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return "mcp_stdio"
}
