package renderer

// Rollback collects release actions while a multi-step initialization runs.
// If a later step fails, Run releases everything created so far in reverse
// order. On success the caller calls Discard so nothing is released.
type Rollback struct {
	steps []func()
}

// Push records how to release the object just created.
func (r *Rollback) Push(release func()) {
	r.steps = append(r.steps, release)
}

// Run releases recorded objects, newest first, and empties the stack.
func (r *Rollback) Run() {
	for i := len(r.steps) - 1; i >= 0; i-- {
		r.steps[i]()
	}
	r.steps = nil
}

// Discard forgets every recorded action.
func (r *Rollback) Discard() {
	r.steps = nil
}

func (r *Rollback) Len() int {
	return len(r.steps)
}
