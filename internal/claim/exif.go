package claim

import (
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureTime reads the EXIF capture date of an image.
// Returns an error if the file cannot be read or has no EXIF data.
func CaptureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}
	return x.DateTime()
}
