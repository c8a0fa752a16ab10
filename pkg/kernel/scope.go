package kernel

// Scope collects primitive handles obtained from a kernel so they can be
// released together, whichever way the caller returns:
//
//	s := kernel.NewScope(k)
//	defer s.Release()
//	prims, err := k.Explode(c)
//	s.Hold(prims...)
type Scope struct {
	k    Kernel
	held []*Primitive
}

// NewScope returns an empty scope bound to k.
func NewScope(k Kernel) *Scope {
	return &Scope{k: k}
}

// Hold registers handles for release. Nil handles are skipped.
func (s *Scope) Hold(ps ...*Primitive) {
	for _, p := range ps {
		if p != nil {
			s.held = append(s.held, p)
		}
	}
}

// Len returns the number of handles currently held.
func (s *Scope) Len() int {
	return len(s.held)
}

// Release frees every held handle, newest first. It is safe to call more
// than once.
func (s *Scope) Release() {
	for i := len(s.held) - 1; i >= 0; i-- {
		s.k.Release(s.held[i])
	}
	s.held = nil
}
