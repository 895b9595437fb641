package sessionstore

import "time"

// debouncer is a trailing-edge timer: every schedule call replaces the
// pending one. It has no lock of its own; Store.mu guards it.
//
// A timer can fire while its callback is waiting for the lock and then lose
// to a cancel or a newer schedule. Each arm gets a generation number and the
// callback only acts when its generation is still current.
type debouncer struct {
	delay time.Duration
	timer *time.Timer
	gen   uint64
}

func (d *debouncer) schedule(fn func(gen uint64)) {
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { fn(gen) })
}

// cancel drops the pending call, if any.
func (d *debouncer) cancel() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// fired reports whether gen is the live arm and, if so, consumes it.
func (d *debouncer) fired(gen uint64) bool {
	if gen != d.gen || d.timer == nil {
		return false
	}
	d.timer = nil
	return true
}

func (d *debouncer) pending() bool {
	return d.timer != nil
}
