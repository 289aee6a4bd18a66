package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many rows any listing query can request.
	MaxLimit = 200
)

// Params holds limit/offset listing inputs from controllers or services.
type Params struct {
	Limit  int
	Offset int
}

// Normalize enforces the configured default and maximum limits and clamps a
// negative offset to zero.
func (p Params) Normalize() Params {
	out := p
	if out.Limit <= 0 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	if out.Offset < 0 {
		out.Offset = 0
	}
	return out
}
