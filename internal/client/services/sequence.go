package services

// Sequencer hands out increasing tickets. Only the most recently issued
// ticket is current; results carrying an older ticket are stale.
//
// Sequencer is not synchronized: callers issue and check tickets while
// holding the mutex that guards the state the ticket protects.
type Sequencer struct {
	last uint64
}

// Next issues a new ticket, making every earlier ticket stale.
func (s *Sequencer) Next() uint64 {
	s.last++
	return s.last
}

// Current reports whether t is the latest issued ticket.
func (s *Sequencer) Current(t uint64) bool {
	return t == s.last
}

// Invalidate makes every issued ticket stale.
func (s *Sequencer) Invalidate() {
	s.last++
}
