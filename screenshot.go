package adb

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/google/uuid"
)

func defaultScreenshotDecoder(r *os.File) (image.Image, error) {
	return png.Decode(r)
}

// ScreenshotDecoder decodes a PNG captured by "screencap -p" into an
// image.Image. The default is image/png.Decode; callers that want a
// different decoder (or one with format-sniffing fallbacks) can swap it
// out (spec.md EXPANSION: "screenshot" is deliberately decoupled from any
// specific image library).
var ScreenshotDecoder func(r *os.File) (image.Image, error)

// Screenshot captures the device's display via "screencap -p", pulls it
// to a temporary local file, decodes it, and removes both the remote and
// local temp files before returning (spec.md §4.6: "screenshot").
func (d *Device) Screenshot() (image.Image, error) {
	remotePath := fmt.Sprintf("%s/screenshot-%s.png", remoteTmpDir, uuid.NewString())

	if _, err := d.Shell("screencap", "-p", remotePath); err != nil {
		return nil, wrapClientError(err, d, "Screenshot")
	}
	defer d.Shell("rm", remotePath)

	local, err := os.CreateTemp("", "goadb-screenshot-*.png")
	if err != nil {
		return nil, wrapClientError(err, d, "Screenshot")
	}
	localPath := local.Name()
	local.Close()
	defer os.Remove(localPath)

	if _, err := d.Pull(remotePath, localPath); err != nil {
		return nil, err
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, wrapClientError(err, d, "Screenshot")
	}
	defer f.Close()

	decode := ScreenshotDecoder
	if decode == nil {
		decode = defaultScreenshotDecoder
	}
	img, err := decode(f)
	if err != nil {
		return nil, wrapClientError(err, d, "Screenshot")
	}
	return img, nil
}
