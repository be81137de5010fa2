package evidence

import "time"

const (
	// ticksPerSecond is the number of 100ns filetime ticks in a second
	ticksPerSecond = 10_000_000

	// filetimeUnixDelta is the tick count between 1601-01-01 and 1970-01-01
	filetimeUnixDelta = 116_444_736_000_000_000
)

// ToFiletime converts t into the high and low words of a 64-bit count of
// 100ns ticks since 1601-01-01T00:00:00Z. Sub-tick precision is truncated.
func ToFiletime(t time.Time) (high, low uint32) {
	ticks := uint64(t.Unix()*ticksPerSecond + int64(t.Nanosecond()/100) + filetimeUnixDelta)
	return uint32(ticks >> 32), uint32(ticks)
}

// FromFiletime is the inverse of ToFiletime. The result is in UTC.
func FromFiletime(high, low uint32) time.Time {
	ticks := int64(uint64(high)<<32|uint64(low)) - filetimeUnixDelta
	sec := ticks / ticksPerSecond
	rem := ticks % ticksPerSecond
	if rem < 0 {
		sec--
		rem += ticksPerSecond
	}
	return time.Unix(sec, rem*100).UTC()
}
