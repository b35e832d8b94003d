package configdef

const (
	DefaultPrefix    = "image."
	DefaultExtension = ".pgm"
	DefaultFirst     = 5
	DefaultStep      = 1
	DefaultZeroPad   = 4
	DefaultDiskCount = 70
	DefaultDiskMS    = 40

	DefaultChannel   = 0
	DefaultScale     = 2
	DefaultFramerate = 30
	DefaultLiveCount = 100

	DefaultWindowTitle = "framegrab"
	DefaultRecordFPS   = 25
)

// Default returns the settings the two original playback programs used.
func Default() Values {
	return Values{
		Source: SourceDisk,
		Disk: Disk{
			Prefix:    DefaultPrefix,
			Extension: DefaultExtension,
			First:     DefaultFirst,
			Step:      DefaultStep,
			ZeroPad:   DefaultZeroPad,
			Count:     DefaultDiskCount,
			PeriodMS:  DefaultDiskMS,
		},
		Live: Live{
			Channel:   DefaultChannel,
			Scale:     DefaultScale,
			Framerate: DefaultFramerate,
			Count:     DefaultLiveCount,
		},
		Outputs: Outputs{
			WindowTitle: DefaultWindowTitle,
			RecordFPS:   DefaultRecordFPS,
		},
	}
}
