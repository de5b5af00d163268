package server

import "sync/atomic"

// livenessFlag tracks whether the dispatcher and reaper goroutines are
// currently running, backing the admin surface's /healthz probe.
type livenessFlag struct {
	dispatcherUp atomic.Bool
	reaperUp     atomic.Bool
}

func newLivenessFlag() *livenessFlag { return &livenessFlag{} }

func (f *livenessFlag) markDispatcherUp()   { f.dispatcherUp.Store(true) }
func (f *livenessFlag) markDispatcherDown() { f.dispatcherUp.Store(false) }
func (f *livenessFlag) markReaperUp()       { f.reaperUp.Store(true) }
func (f *livenessFlag) markReaperDown()     { f.reaperUp.Store(false) }

func (f *livenessFlag) healthy() bool {
	return f.dispatcherUp.Load() && f.reaperUp.Load()
}
