package driver

// MemoryDevice keeps the last shown frame in process. It backs strips on
// hosts without GPIO and every test that needs to observe output.
type MemoryDevice struct {
	frame  []uint32
	shows  int
	closed bool
}

func newMemoryDevice(pixelCount int) *MemoryDevice {
	return &MemoryDevice{frame: make([]uint32, pixelCount)}
}

// Show copies the frame so later mutations of the caller's buffer do not
// alter what was "displayed".
func (d *MemoryDevice) Show(frame []uint32) error {
	if d.closed {
		return ErrClosed
	}
	copy(d.frame, frame)
	d.shows++
	return nil
}

// Close marks the device closed; further writes fail.
func (d *MemoryDevice) Close() error {
	d.closed = true
	return nil
}

// Frame returns the last shown frame.
func (d *MemoryDevice) Frame() []uint32 {
	return d.frame
}

// Shows returns how many frames have been pushed.
func (d *MemoryDevice) Shows() int {
	return d.shows
}
