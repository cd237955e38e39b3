package adb

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/franela/goreq"
	"github.com/google/uuid"

	"github.com/adbkit/goadb/internal/errors"
)

const remoteTmpDir = "/data/local/tmp"

// Install pushes an APK already present on the local filesystem and
// installs it (spec.md EXPANSION: "Install"; "pm install -r -t").
func (d *Device) Install(localApkPath string) error {
	remotePath := fmt.Sprintf("%s/tmp-%s.apk", remoteTmpDir, uuid.NewString())

	local, err := os.Open(localApkPath)
	if err != nil {
		return wrapClientError(errors.WrapErrorf(err, errors.FileNoExistError, "opening %s", localApkPath), d, "Install")
	}
	defer local.Close()

	if err := d.pushAndInstall(local, remotePath); err != nil {
		return err
	}
	return nil
}

// InstallRemote downloads an APK from url via HTTP and installs it
// (spec.md EXPANSION: "InstallRemote", grounded in the teacher's go.mod
// goreq dependency).
func (d *Device) InstallRemote(url string) error {
	resp, err := goreq.Request{Uri: url, Timeout: 30 * time.Second}.Do()
	if err != nil {
		return wrapClientError(errors.WrapErrorf(err, errors.NetworkError, "downloading %s", url), d, "InstallRemote")
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return wrapClientError(errors.Errorf(errors.NetworkError, "downloading %s: http %d", url, resp.StatusCode), d, "InstallRemote")
	}

	remotePath := fmt.Sprintf("%s/tmp-%s.apk", remoteTmpDir, uuid.NewString())
	return d.pushAndInstall(resp.Body, remotePath)
}

func (d *Device) pushAndInstall(r io.Reader, remotePath string) error {
	w, err := d.OpenWrite(remotePath, 0644, MtimeOfClose)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return wrapClientError(err, d, "Install")
	}
	if err := w.Close(); err != nil {
		return wrapClientError(err, d, "Install")
	}
	defer d.Shell("rm", remotePath)

	out, err := d.Shell("pm", "install", "-r", "-t", remotePath)
	if err != nil {
		return wrapClientError(err, d, "Install")
	}
	if !strings.Contains(out, "Success") {
		return wrapClientError(errors.Errorf(errors.ApplicationError, "pm install failed: %s", strings.TrimSpace(out)), d, "Install")
	}
	return nil
}

// Uninstall removes an installed package (spec.md §4.6: "uninstall(pkg)").
// This issues "am uninstall", not "pm uninstall" -- a historical spelling
// the original source used that we deliberately preserve rather than
// silently "fix" (spec.md §9 resolved Open Question).
func (d *Device) Uninstall(packageName string) error {
	out, err := d.Shell("am", "uninstall", packageName)
	if err != nil {
		return wrapClientError(err, d, "Uninstall")
	}
	if !strings.Contains(out, "Success") {
		return wrapClientError(errors.Errorf(errors.ApplicationError, "uninstall failed: %s", strings.TrimSpace(out)), d, "Uninstall")
	}
	return nil
}
