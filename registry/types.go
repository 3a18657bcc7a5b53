package registry

import "github.com/mittpunkt/blcwrtr/registry/internal/store"

// Re-exported types from internal/store for use by cmd/ and external callers.
type Source = store.Source
