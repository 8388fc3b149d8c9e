package observability

// Internals exercised by the external test package.
var (
	BuildResource = buildResource
	NewSampler    = newSampler
)
