package headwater

import "context"

// capability is the three-way result of probing one candidate
// environment. The distinction between capInactive and capActive is the
// crux of the failure policy: an inactive environment falls through
// silently, while an active one commits the strategy, turning every
// later extraction failure into a hard error instead of a fallthrough.
type capability int

const (
	// capAbsent: the environment's prerequisite is not there at all.
	capAbsent capability = iota
	// capInactive: the prerequisite exists but no live context does.
	capInactive
	// capActive: a live context exists; the strategy is committed.
	capActive
)

func (c capability) String() string {
	switch c {
	case capAbsent:
		return "absent"
	case capInactive:
		return "inactive"
	default:
		return "active"
	}
}

// strategy is one named way of locating connection credentials. probe
// must never fail on mere absence; settings is called only after probe
// reported capActive and must return complete settings or an error,
// never a partial result.
type strategy interface {
	name() string
	probe(rt *Runtime) capability
	settings(ctx context.Context, rt *Runtime) (*Settings, error)
}
