package adb

import (
	"strings"

	"github.com/adbkit/goadb/internal/errors"
)

// parseDeviceList parses a "host:devices" response body: each non-empty
// line is "<serial>\t<state>" (spec.md §4.3, §8 scenario 1).
func parseDeviceList(body string) ([]*DeviceInfo, error) {
	var devices []*DeviceInfo
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, errors.Errorf(errors.ParseError, "invalid device list line: %q", line)
		}
		devices = append(devices, &DeviceInfo{
			Serial: fields[0],
			State:  DeviceState(fields[1]),
		})
	}
	return devices, nil
}

// parseForwardList parses a "host:list-forward"/"<prefix>:list-forward"
// response body: one "<serial> <local> <remote>" line per mapping,
// whitespace-separated (spec.md §4.3/§9 "ForwardItem parsing": split on any
// whitespace, require >=3 fields, ignore malformed lines with a warning).
func parseForwardList(body string) []ForwardItem {
	var items []ForwardItem
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			defaultLogger.WithField("line", line).Warn("ignoring malformed list-forward line")
			continue
		}
		items = append(items, ForwardItem{Serial: fields[0], Local: fields[1], Remote: fields[2]})
	}
	return items
}
