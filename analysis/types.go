package analysis

import "github.com/mittpunkt/blcwrtr/analysis/internal/store"

// Re-exported store types forming the public analysis vocabulary.
type (
	Profile   = store.Profile
	Voice     = store.Voice
	Policy    = store.Policy
	Example   = store.Example
	Portfolio = store.Portfolio
	Event     = store.Event
)
