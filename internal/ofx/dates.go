package ofx

import (
	"fmt"
	"strconv"
	"time"
)

// ParseDate converts an OFX date token (YYYYMMDD, optionally followed
// by a time and timezone suffix) into a local-midnight time.Time.
// Empty, short or non-numeric tokens are an error.
func ParseDate(s string) (time.Time, error) {
	if len(s) < 8 {
		return time.Time{}, fmt.Errorf("ofx date %q: too short", s)
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("ofx date %q: bad year", s)
	}
	month, err := strconv.Atoi(s[4:6])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("ofx date %q: bad month", s)
	}
	day, err := strconv.Atoi(s[6:8])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("ofx date %q: bad day", s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
}

// DecodeDate is the lenient variant used for statement-level fields
// such as DTASOF: a bad token falls back to the current date so it
// never aborts a statement. Transaction dates go through ParseDate so
// an unusable DTPOSTED drops the transaction instead.
func DecodeDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		return today()
	}
	return t
}

// EncodeISODate renders a time as YYYY-MM-DD.
func EncodeISODate(t time.Time) string {
	return t.Format("2006-01-02")
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}
