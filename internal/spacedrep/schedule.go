package spacedrep

// DayMillis is the length of one scheduling day in epoch milliseconds.
const DayMillis int64 = 86_400_000

// Intervals maps each rating to its review interval in days. The policy is
// fixed: prior intervals and history play no part. Again has no interval and
// therefore schedules nothing.
var Intervals = map[Rating]int{
	Again: 0,
	Hard:  2,
	Good:  4,
	Easy:  7,
}

// IntervalFor returns the interval in days for r, or 0 for invalid ratings.
func IntervalFor(r Rating) int {
	return Intervals[r]
}
