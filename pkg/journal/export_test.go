package journal

import (
	"time"

	"gorm.io/gorm"
)

func OverloadTimeNow(overload func() time.Time) func() {
	ref := timeNow
	timeNow = overload
	return func() { timeNow = ref }
}

func OverloadAutoMigrate(overload func(*gorm.DB) error) func() {
	ref := autoMigrate
	autoMigrate = overload
	return func() { autoMigrate = ref }
}

func OverloadCloseDBConnection(overload func(*gorm.DB) error) func() {
	ref := closeDBConnection
	closeDBConnection = overload
	return func() { closeDBConnection = ref }
}
