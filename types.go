package adb

import (
	"fmt"
	"os"
	"time"
)

// DeviceState is the opaque state string adb reports for a device
// (spec.md §3: "state is one of device|offline|unauthorized|bootloader|
// recovery|sideload|… (treat as opaque string)").
type DeviceState string

// DeviceInfo is the device record spec.md §3 describes, as reported by
// "host:devices". ListDevices fills in Serial and State only; Properties,
// TransportID and ServerAddr are left empty and are not filled in later
// (Device.Properties returns getprop output as a separate map).
type DeviceInfo struct {
	Serial      string
	TransportID *uint8
	State       DeviceState
	Properties  map[string]string
	ServerAddr  string
}

// FileInfo mirrors wire.FileInfo for package-level callers (spec.md §3). A
// zero Mtime means the entry does not exist (the SYNC STAT convention).
type FileInfo struct {
	Mode  os.FileMode
	Size  uint32
	Mtime time.Time
	Path  string
}

func (info FileInfo) exists() bool {
	return !info.Mtime.IsZero()
}

// ForwardItem is a single "host:list-forward" mapping (spec.md §3).
type ForwardItem struct {
	Serial string
	Local  string
	Remote string
}

// AppInfo is extracted from "dumpsys package <pkg>" (spec.md §3). Every
// field is optional: absent fields stay zero-valued rather than erroring,
// since the regexes that populate app_info are best-effort against
// free-form text.
type AppInfo struct {
	PackageName      string
	VersionName      string
	VersionCode      string
	Signature        string
	Flags            []string
	FirstInstallTime string
	LastUpdateTime   string
	Path             string
	SubApkPaths      []string
}

// NetworkType is the closed set of socket-kind prefixes accepted as
// stage-2 dial-through commands (spec.md §3/§6). "unix" is accepted as an
// alias for NetLocalAbstract at construction time (NetworkTypeFromString).
type NetworkType string

const (
	NetTCP             NetworkType = "tcp:"
	NetLocal           NetworkType = "local:"
	NetLocalReserved   NetworkType = "localreserved:"
	NetLocalFilesystem NetworkType = "localfilesystem:"
	NetLocalAbstract   NetworkType = "localabstract:"
	NetDev             NetworkType = "dev:"
)

// NetworkTypeFromString maps a user-facing network kind name (as accepted
// by the "adb forward"/"adb reverse" CLI, e.g. "tcp", "localabstract",
// "unix") to its wire-exact NetworkType. "unix" is an alias for
// localabstract (spec.md §3).
func NetworkTypeFromString(s string) (NetworkType, error) {
	switch s {
	case "tcp":
		return NetTCP, nil
	case "local":
		return NetLocal, nil
	case "localreserved":
		return NetLocalReserved, nil
	case "localfilesystem":
		return NetLocalFilesystem, nil
	case "localabstract", "unix":
		return NetLocalAbstract, nil
	case "dev":
		return NetDev, nil
	default:
		return "", fmt.Errorf("unknown network type: %s", s)
	}
}

// Command is the tagged union spec.md §3/§4.7 describes: either a single
// verbatim string, or a list of arguments joined with per-argument shell
// escaping.
type Command interface {
	commandLine() string
}

// SingleCommand is sent verbatim, with no escaping applied.
type SingleCommand string

func (s SingleCommand) commandLine() string { return string(s) }

// MultipleCommand is joined with a space after escaping each argument
// (spec.md §4.7).
type MultipleCommand []string

func (m MultipleCommand) commandLine() string {
	return EscapeArgs([]string(m))
}
