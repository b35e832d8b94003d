package consumer

import (
	"github.com/spf13/afero"
	"gocv.io/x/gocv"
)

type VideoWriter = videoWriter

func OverloadFs(overload afero.Fs) func() {
	ref := fs
	fs = overload
	return func() { fs = ref }
}

func OverloadOpenVideoWriter(
	overload func(filename, codec string, fps float64, width, height int, isColor bool) (videoWriter, error),
) func() {
	ref := openVideoWriter
	openVideoWriter = overload
	return func() { openVideoWriter = ref }
}

var _ videoWriter = (*gocv.VideoWriter)(nil)
