package units

import "fmt"

// Byte degree names.
const (
	Byte     = "byte"
	Kilobyte = "kilobyte"
	Megabyte = "megabyte"
	Gigabyte = "gigabyte"
	Terabyte = "terabyte"
)

// Time degree names.
const (
	Second = "second"
	Minute = "minute"
	Hour   = "hour"
	Day    = "day"
	Week   = "week"
	Month  = "month"
	Year   = "year"
)

// ByteScale is the power-of-1024 ladder from bytes to terabytes.
var ByteScale = newByteScale()

// TimeScale relates seconds up to years through explicit intervals.
var TimeScale = newTimeScale()

func newByteScale() *Scale {
	s := NewScale("bytes", NewDegree(Byte, "B", 0), 1024)
	s.DefinePower(NewDegree(Kilobyte, "KB", 1))
	s.DefinePower(NewDegree(Megabyte, "MB", 2))
	s.DefinePower(NewDegree(Gigabyte, "GB", 3))
	s.DefinePower(NewDegree(Terabyte, "TB", 4))
	return s
}

func newTimeScale() *Scale {
	second := NewDegree(Second, "secs", 0)
	minute := NewDegree(Minute, "mins", 0)
	hour := NewDegree(Hour, "hours", 0)
	day := NewDegree(Day, "days", 0)
	week := NewDegree(Week, "weeks", 0)
	month := NewDegree(Month, "months", 0)
	year := NewDegree(Year, "years", 0)

	s := NewScale("time", second, 0)
	s.DefineInterval(minute, second, 60)
	s.DefineInterval(hour, minute, 60)
	s.DefineInterval(day, hour, 24)
	s.DefineInterval(week, day, 7)
	s.DefineInterval(year, day, 365.25)
	s.DefineInterval(year, month, 12)
	return s
}

// Bytes returns n bytes as a value on ByteScale.
func Bytes(n int64) Value {
	return Value{Amount: float64(n), Degree: ByteScale.degrees[0], scale: ByteScale}
}

// Seconds returns n seconds as a value on TimeScale.
func Seconds(n float64) Value {
	return Value{Amount: n, Degree: TimeScale.degrees[0], scale: TimeScale}
}

// FormatBytes renders a byte count in its most readable degree, e.g. "1 KB".
func FormatBytes(n int64) string {
	return Bytes(n).Best(2, 0.5, " ")
}

// Column renders a byte count for a fixed-width table column, aligned on
// the decimal point. Amounts of at least 0.1 of a degree are preferred.
func Column(n int64) string {
	v := Bytes(n).ToBest(0.1)
	return fmt.Sprintf("%7.2f %2s", Round(v.Amount, 2), v.Degree.Symbol)
}

// FormatBytesAccurate renders a byte count in the shortest degree that
// keeps three significant digits, e.g. "5 GB" or "0.977 KB".
func FormatBytesAccurate(n int64) string {
	return Bytes(n).BestAccurate(3, true, " ")
}
