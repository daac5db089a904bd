package usecase

import (
	"fmt"
	"time"
)

const (
	// DefaultUTCOffsetHours は取引所ローカル時間のUTCオフセットです（ジャカルタ、UTC+7、DSTなし）。
	DefaultUTCOffsetHours = 7
	// DefaultOpenHour は取引開始時刻（取引所ローカル時）です。
	DefaultOpenHour = 9
	// DefaultCloseHour は取引終了時刻（取引所ローカル時）です。
	DefaultCloseHour = 16
)

// SessionClock classifies UTC timestamps into the exchange's local trading
// calendar using a fixed UTC offset (no DST).
type SessionClock struct {
	offset    time.Duration
	openHour  int
	closeHour int
}

// NewSessionClock はSessionClockを生成します。closeHour < openHour の場合はデフォルト値に戻します。
func NewSessionClock(utcOffsetHours, openHour, closeHour int) *SessionClock {
	if closeHour < openHour {
		openHour = DefaultOpenHour
		closeHour = DefaultCloseHour
	}
	return &SessionClock{
		offset:    time.Duration(utcOffsetHours) * time.Hour,
		openHour:  openHour,
		closeHour: closeHour,
	}
}

// Classify converts an epoch-ms UTC timestamp into the exchange-local
// calendar date ("YYYY-MM-DD") and local hour (0-23).
func (sc *SessionClock) Classify(tsMs int64) (string, int) {
	local := time.UnixMilli(tsMs).UTC().Add(sc.offset)
	return local.Format("2006-01-02"), local.Hour()
}

// InSession reports whether the timestamp falls inside the trading session
// of the given exchange-local date. The closing hour is inclusive as an
// hour value, so the whole closing hour's 60 minutes are admitted; callers
// needing minute-precision close must bound on local time-of-day themselves.
func (sc *SessionClock) InSession(tsMs int64, date string) bool {
	localDate, localHour := sc.Classify(tsMs)
	return localDate == date && localHour >= sc.openHour && localHour <= sc.closeHour
}

// ValidateDate は "YYYY-MM-DD" 形式の日付文字列を検証します。
func ValidateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}
	return nil
}
