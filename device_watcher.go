package adb

import (
	"time"

	"github.com/adbkit/goadb/internal/errors"
)

// DeviceStateChangedEvent describes one device transitioning between
// states (including appearing/disappearing, modeled as transitions to/
// from the empty DeviceState) (spec.md EXPANSION: DeviceWatcher).
type DeviceStateChangedEvent struct {
	Serial   string
	OldState DeviceState
	NewState DeviceState
}

// CameOnline reports whether this event is a device's first appearance.
func (e DeviceStateChangedEvent) CameOnline() bool {
	return e.OldState == "" && e.NewState != ""
}

// WentOffline reports whether this event is a device's disappearance.
func (e DeviceStateChangedEvent) WentOffline() bool {
	return e.OldState != "" && e.NewState == ""
}

// deviceWatcherPollInterval is how often DeviceWatcher re-lists devices.
// The real "host:track-devices" long-poll service is out of scope (spec.md
// Non-goals: this library targets the request/reply host commands and
// SYNC sub-protocol; a persistent-stream watcher is a deliberate
// simplification, tracked as a DESIGN.md Open Question decision).
const deviceWatcherPollInterval = 1 * time.Second

// DeviceWatcher polls the adb server's device list and reports
// DeviceStateChangedEvent values on C as they occur.
type DeviceWatcher struct {
	C      chan DeviceStateChangedEvent
	errC   chan error
	stopC  chan struct{}
	server server
}

func newDeviceWatcher(s server) *DeviceWatcher {
	w := &DeviceWatcher{
		C:      make(chan DeviceStateChangedEvent),
		errC:   make(chan error, 1),
		stopC:  make(chan struct{}),
		server: s,
	}
	go w.run()
	return w
}

// Err returns the error that stopped the watcher, if any, after C closes.
func (w *DeviceWatcher) Err() error {
	select {
	case err := <-w.errC:
		return err
	default:
		return nil
	}
}

// Shutdown stops the watcher's polling goroutine and closes C.
func (w *DeviceWatcher) Shutdown() {
	close(w.stopC)
}

func (w *DeviceWatcher) run() {
	defer close(w.C)

	last := map[string]DeviceState{}
	ticker := time.NewTicker(deviceWatcherPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopC:
			return
		case <-ticker.C:
			resp, err := roundTripSingleResponse(w.server, "host:devices")
			if err != nil {
				w.errC <- errors.WrapErrf(err, "DeviceWatcher")
				return
			}
			devices, err := parseDeviceList(string(resp))
			if err != nil {
				w.errC <- errors.WrapErrf(err, "DeviceWatcher")
				return
			}

			current := make(map[string]DeviceState, len(devices))
			for _, d := range devices {
				current[d.Serial] = d.State
				if old, ok := last[d.Serial]; !ok || old != d.State {
					select {
					case w.C <- DeviceStateChangedEvent{Serial: d.Serial, OldState: old, NewState: d.State}:
					case <-w.stopC:
						return
					}
				}
			}
			for serial, old := range last {
				if _, ok := current[serial]; !ok {
					select {
					case w.C <- DeviceStateChangedEvent{Serial: serial, OldState: old, NewState: ""}:
					case <-w.stopC:
						return
					}
				}
			}
			last = current
		}
	}
}
