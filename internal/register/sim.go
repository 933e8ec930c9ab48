package register

import "sync"

// SimPort is a scripted register port for testing. Registers hold fixed
// bytes unless a queue is scripted for them; queued bytes are consumed
// one per read, after which reads fall back to the fixed byte (zero by
// default, which decodes as an empty FIFO).
type SimPort struct {
	mu     sync.Mutex
	fixed  map[uint8]byte
	queues map[uint8][]byte
	errs   map[uint8]error
	reads  map[uint8]int
}

// NewSimPort returns a port with all registers reading zero.
func NewSimPort() *SimPort {
	return &SimPort{
		fixed:  make(map[uint8]byte),
		queues: make(map[uint8][]byte),
		errs:   make(map[uint8]error),
		reads:  make(map[uint8]int),
	}
}

// Set fixes the byte a register reads when its queue is empty.
func (s *SimPort) Set(reg uint8, b byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixed[reg] = b
}

// Push queues bytes to be returned by successive reads of a register.
func (s *SimPort) Push(reg uint8, bytes ...byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[reg] = append(s.queues[reg], bytes...)
}

// Fail makes every read of a register return err until cleared with a
// nil err.
func (s *SimPort) Fail(reg uint8, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, reg)
		return
	}
	s.errs[reg] = err
}

// Reads returns how many times a register has been read.
func (s *SimPort) Reads(reg uint8) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[reg]
}

// ReadRegister implements Port.
func (s *SimPort) ReadRegister(reg uint8) (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads[reg]++
	if err := s.errs[reg]; err != nil {
		return 0, err
	}
	if q := s.queues[reg]; len(q) > 0 {
		b := q[0]
		s.queues[reg] = q[1:]
		return b, nil
	}
	return s.fixed[reg], nil
}
