package session

import "time"

func OverloadTimeNow(overload func() time.Time) func() {
	ref := timeNow
	timeNow = overload
	return func() { timeNow = ref }
}
