package health

import "context"

// CheckFull runs the internal check, then the public check, in that
// fixed order (spec §4.7: "a node is ready iff both pass"). The
// internal check's failure short-circuits before the public probes
// run at all.
func CheckFull(ctx context.Context, internalIn NodeCheckInput, publicIn PublicCheckInput) Result {
	internal := CheckInternal(ctx, internalIn)
	if !internal.Healthy {
		return internal
	}
	public := CheckPublic(ctx, publicIn)
	return merge([]Result{internal, public})
}
