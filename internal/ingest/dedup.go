package ingest

import "sync"

const dedupMaxDevices = 4096

// dedup drops repeated format 5 advertisements. A tag rebroadcasts the same
// measurement several times, so an unchanged sequence number means nothing
// new was measured.
type dedup struct {
	mu   sync.Mutex
	last map[string]uint16
}

func newDedup() *dedup {
	return &dedup{
		last: make(map[string]uint16),
	}
}

// seen records seq for address and reports whether it equals the previous
// value.
func (d *dedup) seen(address string, seq uint16) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev, ok := d.last[address]
	if ok && prev == seq {
		return true
	}

	if !ok && len(d.last) >= dedupMaxDevices {
		d.last = make(map[string]uint16)
	}

	d.last[address] = seq

	return false
}
