package disk

import "github.com/spf13/afero"

// OverloadFs swaps the package default file system and returns a func
// to restore it.
func OverloadFs(overload afero.Fs) func() {
	ref := fs
	fs = overload
	return func() { fs = ref }
}
