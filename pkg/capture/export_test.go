package capture

import (
	"image"
	"time"

	"gocv.io/x/gocv"
)

func OverloadTimeNow(overload func() time.Time) func() {
	ref := timeNow
	timeNow = overload
	return func() { timeNow = ref }
}

func OverloadSleep(overload func(time.Duration)) func() {
	ref := sleep
	sleep = overload
	return func() { sleep = ref }
}

func OverloadOpenVideoCapture(overload func(int) (*gocv.VideoCapture, error)) func() {
	ref := openVideoCapture
	openVideoCapture = overload
	return func() { openVideoCapture = ref }
}

func OverloadCloseVideoCapture(overload func(*gocv.VideoCapture) error) func() {
	ref := closeVideoCapture
	closeVideoCapture = overload
	return func() { closeVideoCapture = ref }
}

func SyntheticWithSize(w, h int) Device {
	return &syntheticDevice{size: image.Pt(w, h)}
}
