package compute

// A pair of equally sized buffers that alternate between the source and
// destination roles. Kernels read Current and write Alternate; Swap flips
// the roles once the write has been queued.
type PingPong struct {
	bufs [2]Buffer
	cur  int
}

// Create a ping-pong pair named name0 and name1.
func NewPingPong(dev Device, name string) *PingPong {
	return &PingPong{
		bufs: [2]Buffer{
			dev.Buffer(name + "0"),
			dev.Buffer(name + "1"),
		},
	}
}

// Allocate both buffers.
func (pp *PingPong) Allocate(size int, mode AccessMode) error {
	for _, buf := range pp.bufs {
		if err := buf.Allocate(size, mode); err != nil {
			return err
		}
	}
	pp.cur = 0
	return nil
}

func (pp *PingPong) Current() Buffer {
	return pp.bufs[pp.cur]
}

func (pp *PingPong) Alternate() Buffer {
	return pp.bufs[pp.cur^1]
}

// Swap buffer roles.
func (pp *PingPong) Swap() {
	pp.cur ^= 1
}

// Reset roles so that the first buffer is current.
func (pp *PingPong) Reset() {
	pp.cur = 0
}

func (pp *PingPong) Release() {
	for _, buf := range pp.bufs {
		buf.Release()
	}
}
