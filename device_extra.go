package adb

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/adbkit/goadb/internal/errors"
)

func packageNotExistErr(packageName string) error {
	return errors.Errorf(errors.ApplicationError, "package %s is not installed", packageName)
}

// Process is a single "ps" row.
type Process struct {
	User string
	Pid  int
	Name string
}

// ListProcesses runs "ps" and parses its column-aligned output into
// Process records (SPEC_FULL.md "Supplemented features": process listing,
// grounded in the teacher's device_extra.go).
func (d *Device) ListProcesses() ([]Process, error) {
	reader, err := d.OpenCommand("ps")
	if err != nil {
		return nil, wrapClientError(err, d, "ListProcesses")
	}
	defer reader.Close()

	var ps []Process
	var fieldNames []string
	bufrd := bufio.NewReader(reader)
	for {
		line, _, err := bufrd.ReadLine()
		fields := strings.Fields(strings.TrimSpace(string(line)))
		if len(fields) == 0 {
			break
		}
		if fieldNames == nil {
			fieldNames = fields
			if err == io.EOF {
				break
			}
			continue
		}
		var process Process
		// example output of command "ps":
		// USER     PID   PPID  VSIZE  RSS     WCHAN    PC         NAME
		// root      1     0     684    540   ffffffff 00000000 S /init
		if len(fields) != len(fieldNames)+1 {
			if err == io.EOF {
				break
			}
			continue
		}
		for index, name := range fieldNames {
			value := fields[index]
			switch strings.ToUpper(name) {
			case "PID":
				process.Pid, _ = strconv.Atoi(value)
			case "NAME":
				process.Name = fields[len(fields)-1]
			case "USER":
				process.User = value
			}
		}
		if process.Pid != 0 {
			ps = append(ps, process)
		}
		if err == io.EOF {
			break
		}
	}
	return ps, nil
}

// PackageInfo is extracted from "dumpsys package <pkg>".
type PackageInfo struct {
	Name    string
	Path    string
	Version struct {
		Code int
		Name string
	}
}

var (
	rePkgPath = regexp.MustCompile(`codePath=([^\s]+)`)
	reVerCode = regexp.MustCompile(`versionCode=(\d+)`)
	reVerName = regexp.MustCompile(`versionName=([^\s]+)`)
)

// StatPackage returns installed-package metadata parsed out of
// "dumpsys package <pkg>". Returns a *ShellExitError-free but still
// non-nil error wrapping errors.ApplicationError when the package isn't
// found (SPEC_FULL.md "Supplemented features").
func (d *Device) StatPackage(packageName string) (PackageInfo, error) {
	var pi PackageInfo
	pi.Name = packageName

	out, err := d.Shell("dumpsys", "package", packageName)
	if err != nil {
		return pi, wrapClientError(err, d, "StatPackage")
	}

	matches := rePkgPath.FindStringSubmatch(out)
	if len(matches) == 0 {
		return pi, wrapClientError(packageNotExistErr(packageName), d, "StatPackage")
	}
	pi.Path = matches[1]

	matches = reVerCode.FindStringSubmatch(out)
	if len(matches) == 0 {
		return pi, wrapClientError(packageNotExistErr(packageName), d, "StatPackage")
	}
	pi.Version.Code, _ = strconv.Atoi(matches[1])

	matches = reVerName.FindStringSubmatch(out)
	if len(matches) == 0 {
		return pi, wrapClientError(packageNotExistErr(packageName), d, "StatPackage")
	}
	pi.Version.Name = matches[1]
	return pi, nil
}
