package chanx

import "context"

// Select2 races a receive on two channels and returns whichever is ready
// first, tagged with its side (0 or 1). Ties are broken by Go's native
// select, which already randomizes among simultaneously-ready cases —
// satisfying §4.2's "tie-breaking must avoid starvation" without extra
// bookkeeping.
//
// Errored state supersedes buffered values on the side that errored, per
// Channel's fast-error-surfacing contract: Select2 checks both sides for an
// Errored terminal state before attempting to drain either buffer.
//
// This is the primitive Merge builds its fan-in loop on, grounded
// on the teacher's error_forwarder.go two-armed select-with-closeCh shape.
func Select2[A, B any](ctx context.Context, a *Channel[A], b *Channel[B]) (side int, va A, vb B, err error) {
	select {
	case <-ctx.Done():
		return -1, va, vb, ctx.Err()
	default:
	}

	if cl, terminal := a.closedState(); terminal && cl.Kind == ClosedError {
		return 0, va, vb, cl
	}
	if cl, terminal := b.closedState(); terminal && cl.Kind == ClosedError {
		return 1, va, vb, cl
	}

	select {
	case v := <-a.buf:
		return 0, v, vb, nil
	case v := <-b.buf:
		return 1, va, v, nil
	case <-a.doneC:
		// Drain remaining buffered values before reporting terminal, the
		// same "Done: receivers drain remaining then observe Done" rule
		// Channel.Receive enforces for a single channel (§4.2).
		select {
		case v := <-a.buf:
			return 0, v, vb, nil
		default:
		}
		cl, _ := a.closedState()
		return 0, va, vb, cl
	case <-b.doneC:
		select {
		case v := <-b.buf:
			return 1, va, v, nil
		default:
		}
		cl, _ := b.closedState()
		return 1, va, vb, cl
	case <-ctx.Done():
		return -1, va, vb, ctx.Err()
	}
}
