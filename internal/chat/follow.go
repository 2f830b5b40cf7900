package chat

// DefaultFollowThreshold is how far from the bottom (in rendered rows or
// pixels, whatever the renderer measures) the viewer may scroll before
// auto-scroll stops following new content.
const DefaultFollowThreshold = 150

// FollowPolicy decides whether a renderer should jump to the newest content
// after a conversation change.
type FollowPolicy struct {
	Threshold int
}

// ShouldFollow reports whether to scroll to the bottom. distanceFromBottom is
// how far the viewer currently is from the end of the transcript.
func (p FollowPolicy) ShouldFollow(snap Snapshot, distanceFromBottom int) bool {
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = DefaultFollowThreshold
	}
	return snap.Pending || distanceFromBottom < threshold || len(snap.Turns) <= 2
}
