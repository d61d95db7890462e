package bus

import "sync"

// RecvState distinguishes an empty channel from a permanently
// disconnected one, mirroring the two ways a non-blocking receive can
// fail to hand back a message.
type RecvState int

const (
	// Ok means Recv returned a real message.
	Ok RecvState = iota
	// Empty means nothing is queued right now, but the channel is still
	// open - try again later.
	Empty
	// Disconnected means every Sender has been closed and the queue is
	// drained; no further message will ever arrive. The receiving loop
	// must treat this as fatal per the spec's channel-disconnection rule.
	Disconnected
)

// Channel is an unbounded, multi-producer/single-consumer FIFO. Messages
// are delivered in per-sender order with no ordering guarantee across
// senders, matching the bus's fan-out/fan-in topology. Sends never block.
type Channel struct {
	mu      sync.Mutex
	queue   []Message
	senders int
	closed  bool
}

// NewChannel creates a channel with one outstanding Sender.
func NewChannel() (*Sender, *Receiver) {
	c := &Channel{senders: 1}
	return &Sender{c: c}, &Receiver{c: c}
}

// Sender is one producer's handle onto a Channel. Clone it once per
// additional producer (fan-out) so the channel can tell real disconnection
// (every sender closed) apart from a momentary lull.
type Sender struct {
	c *Channel
}

// Clone returns a new Sender over the same channel, incrementing the
// outstanding-sender count.
func (s *Sender) Clone() *Sender {
	s.c.mu.Lock()
	s.c.senders++
	s.c.mu.Unlock()
	return &Sender{c: s.c}
}

// Send enqueues msg. It never blocks and is a no-op once the channel has
// been fully closed (which only happens after every Sender, including this
// one, has called Close).
func (s *Sender) Send(msg Message) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.closed {
		return
	}
	s.c.queue = append(s.c.queue, msg)
}

// Close releases this Sender's handle. Once every cloned Sender has
// closed, the Receiver observes Disconnected.
func (s *Sender) Close() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.senders > 0 {
		s.c.senders--
	}
	if s.c.senders == 0 {
		s.c.closed = true
	}
}

// Receiver is the single consumer's handle onto a Channel.
type Receiver struct {
	c *Channel
}

// TryRecv pops the oldest queued message without blocking. It returns
// (msg, Ok) if one was available, (nil, Empty) if the queue is open but
// currently empty, or (nil, Disconnected) once every Sender has closed and
// the queue has been fully drained.
func (r *Receiver) TryRecv() (Message, RecvState) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if len(r.c.queue) > 0 {
		msg := r.c.queue[0]
		r.c.queue = r.c.queue[1:]
		return msg, Ok
	}
	if r.c.closed {
		return nil, Disconnected
	}
	return nil, Empty
}

// Drain pops every currently queued message in FIFO order, calling handle
// for each. It returns Disconnected if the channel was (or became) fully
// disconnected with nothing left to deliver, Ok otherwise. This is the
// "drain inbound channel (non-blocking)" step every control loop performs
// once per iteration.
func (r *Receiver) Drain(handle func(Message)) RecvState {
	for {
		msg, state := r.TryRecv()
		switch state {
		case Ok:
			handle(msg)
		case Empty:
			return Ok
		case Disconnected:
			return Disconnected
		}
	}
}
