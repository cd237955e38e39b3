package adb

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/adbkit/goadb/internal/errors"
)

// Keycodes used by SwitchScreen: KEYCODE_WAKEUP/KEYCODE_SLEEP, not the
// power-button toggle (spec.md §4.6: "switch_screen(on)" sends these
// unconditionally).
const (
	keycodeWakeup = 224
	keycodeSleep  = 223
	keycodeHome   = 3
)

// Keyevent sends a single Android keycode via "input keyevent <code>"
// (spec.md §4.6: "keyevent").
func (d *Device) Keyevent(code int) error {
	_, err := d.Shell("input", "keyevent", fmt.Sprintf("%d", code))
	return wrapClientError(err, d, "Keyevent")
}

// Click taps the screen at (x, y) (spec.md §4.6: "click").
func (d *Device) Click(x, y int) error {
	_, err := d.Shell("input", "tap", fmt.Sprintf("%d", x), fmt.Sprintf("%d", y))
	return wrapClientError(err, d, "Click")
}

// Swipe drags from (x1,y1) to (x2,y2) over durationMs milliseconds
// (spec.md §4.6: "swipe").
func (d *Device) Swipe(x1, y1, x2, y2, durationMs int) error {
	_, err := d.Shell("input", "swipe",
		fmt.Sprintf("%d", x1), fmt.Sprintf("%d", y1),
		fmt.Sprintf("%d", x2), fmt.Sprintf("%d", y2),
		fmt.Sprintf("%d", durationMs))
	return wrapClientError(err, d, "Swipe")
}

// SendKeys types literal text via "input text", escaping spaces the way
// the Android "input" command requires (spec.md §4.6: "send_keys").
func (d *Device) SendKeys(text string) error {
	escaped := strings.ReplaceAll(text, " ", "%s")
	_, err := d.Shell("input", "text", escaped)
	return wrapClientError(err, d, "SendKeys")
}

// SwitchScreen turns the screen on or off via KEYCODE_WAKEUP/KEYCODE_SLEEP,
// unconditionally -- not a power-button toggle gated on current state
// (spec.md §4.6: "switch_screen"; §9 notes a source sleep(1) race left to
// callers -- we don't add one here).
func (d *Device) SwitchScreen(on bool) error {
	if on {
		return d.Keyevent(keycodeWakeup)
	}
	return d.Keyevent(keycodeSleep)
}

// SwitchWifi toggles Wi-Fi via svc (spec.md §4.6: "switch_wifi").
func (d *Device) SwitchWifi(on bool) error {
	arg := "disable"
	if on {
		arg = "enable"
	}
	_, err := d.Shell("svc", "wifi", arg)
	return wrapClientError(err, d, "SwitchWifi")
}

// SwitchAirplaneMode toggles airplane mode, updating the setting and
// broadcasting the change the way the Settings app does (spec.md §4.6:
// "switch_airplane_mode").
func (d *Device) SwitchAirplaneMode(on bool) error {
	value := "0"
	if on {
		value = "1"
	}
	if _, err := d.Shell("settings", "put", "global", "airplane_mode_on", value); err != nil {
		return wrapClientError(err, d, "SwitchAirplaneMode")
	}
	_, err := d.Shell("am", "broadcast", "-a", "android.intent.action.AIRPLANE_MODE", "--ez", "state", fmt.Sprintf("%t", on))
	return wrapClientError(err, d, "SwitchAirplaneMode")
}

// wlanIPProbes is the fallback chain spec.md §4.6/the original's
// get_wlan_ip walk: wlan0 first, then eth0, via both "ip addr" and
// "ifconfig" (some Android versions only carry one of the two tools).
var wlanIPProbes = [][]string{
	{"ip", "addr", "show", "wlan0"},
	{"ifconfig", "wlan0"},
	{"ip", "addr", "show", "eth0"},
	{"ifconfig", "eth0"},
}

var wlanIPRe = regexp.MustCompile(`inet (?:addr:)?(\d+\.\d+\.\d+\.\d+)`)

// wlanIPRouteRe extracts the source address off "ip route get 1.1.1.1"'s
// "1.1.1.1 dev wlan0 src 192.168.1.5" reply -- the spec's last-resort probe.
var wlanIPRouteRe = regexp.MustCompile(`src (\d+\.\d+\.\d+\.\d+)`)

// WlanIP probes a handful of commands, in order, for the device's IPv4
// address, swallowing each probe's own error and only failing once every
// probe -- including the final "ip route get 1.1.1.1" fallback -- has been
// exhausted (spec.md §4.6: "wlan_ip").
func (d *Device) WlanIP() (string, error) {
	re := wlanIPRe
	var lastErr error
	for _, probe := range wlanIPProbes {
		out, err := d.Shell(probe[0], probe[1:]...)
		if err != nil {
			lastErr = err
			continue
		}
		if m := re.FindStringSubmatch(out); m != nil {
			return m[1], nil
		}
	}
	if out, err := d.Shell("ip", "route", "get", "1.1.1.1"); err != nil {
		lastErr = err
	} else if m := wlanIPRouteRe.FindStringSubmatch(out); m != nil {
		return m[1], nil
	}
	if lastErr != nil {
		return "", wrapClientError(lastErr, d, "WlanIP")
	}
	return "", wrapClientError(errors.Errorf(errors.ApplicationError, "no wlan0 address found"), d, "WlanIP")
}

// IfScreenOn reports whether the display is currently on, via dumpsys
// power (spec.md §4.6: "if_screen_on").
func (d *Device) IfScreenOn() (bool, error) {
	out, err := d.Shell("dumpsys", "power")
	if err != nil {
		return false, wrapClientError(err, d, "IfScreenOn")
	}
	return strings.Contains(out, "mHoldingDisplaySuspendBlocker=true") ||
		strings.Contains(out, "Display Power: state=ON"), nil
}

// GetSdkVersion reads ro.build.version.sdk (spec.md §4.6: "get_sdk_version").
func (d *Device) GetSdkVersion() (string, error) {
	v, err := d.getprop("ro.build.version.sdk")
	return v, wrapClientError(err, d, "GetSdkVersion")
}

// GetAndroidVersion reads ro.build.version.release (spec.md §4.6:
// "get_android_version").
func (d *Device) GetAndroidVersion() (string, error) {
	v, err := d.getprop("ro.build.version.release")
	return v, wrapClientError(err, d, "GetAndroidVersion")
}

// GetDeviceModel reads ro.product.model (spec.md §4.6: "get_device_model").
func (d *Device) GetDeviceModel() (string, error) {
	v, err := d.getprop("ro.product.model")
	return v, wrapClientError(err, d, "GetDeviceModel")
}

// Brand reads ro.product.brand (spec.md §4.6: "get_device_brand").
func (d *Device) Brand() (string, error) {
	v, err := d.getprop("ro.product.brand")
	return v, wrapClientError(err, d, "Brand")
}

// Manufacturer reads ro.product.manufacturer (spec.md §4.6:
// "get_device_manufacturer").
func (d *Device) Manufacturer() (string, error) {
	v, err := d.getprop("ro.product.manufacturer")
	return v, wrapClientError(err, d, "Manufacturer")
}

// Product reads ro.product.name (spec.md §4.6: "get_device_product").
func (d *Device) Product() (string, error) {
	v, err := d.getprop("ro.product.name")
	return v, wrapClientError(err, d, "Product")
}

// Abi reads ro.product.cpu.abi (spec.md §4.6: "get_device_abi").
func (d *Device) Abi() (string, error) {
	v, err := d.getprop("ro.product.cpu.abi")
	return v, wrapClientError(err, d, "Abi")
}

var glesLinePrefix = "GLES:"

// GetDeviceGpu scans "dumpsys SurfaceFlinger" for the first "GLES:" line
// (spec.md §4.6: "get_device_gpu").
func (d *Device) GetDeviceGpu() (string, error) {
	out, err := d.Shell("dumpsys", "SurfaceFlinger")
	if err != nil {
		return "", wrapClientError(err, d, "GetDeviceGpu")
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, glesLinePrefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, glesLinePrefix)), nil
		}
	}
	return "", wrapClientError(errors.Errorf(errors.ApplicationError, "no GLES line found in SurfaceFlinger dump"), d, "GetDeviceGpu")
}
