// Package kit holds the transport-agnostic building blocks shared by the
// blcwrtr tool packages: the Endpoint abstraction, request context keys,
// structured tool faults and MCP tool registration.
package kit

import "context"

// Endpoint is the fundamental building block: a single RPC-shaped call.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with additional behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first middleware is the
// outermost wrapper.
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(others) - 1; i >= 0; i-- {
			next = others[i](next)
		}
		return outer(next)
	}
}
