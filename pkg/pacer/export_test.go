package pacer

import (
	"context"
	"time"
)

func OverloadTimeNow(overload func() time.Time) func() {
	ref := timeNow
	timeNow = overload
	return func() { timeNow = ref }
}

func OverloadWait(overload func(context.Context, time.Duration) error) func() {
	ref := wait
	wait = overload
	return func() { wait = ref }
}
