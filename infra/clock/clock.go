// Package clock is the sole source of the monotonic nanosecond stamps
// carried on event.Record (UDPRxMonoNS, EnqueuedMonoNS, and the
// dequeue-time stamp the consumer takes on pop). time.Now().UnixNano()
// returns wall-clock time, which can jump backward on an NTP step and
// would make a latency delta between two stamps meaningless; NowNS
// instead reports elapsed time since process start, taken from
// time.Since's monotonic subtraction, which never goes backward.
package clock

import "time"

var start = time.Now()

// NowNS returns nanoseconds elapsed since process start.
func NowNS() uint64 {
	return uint64(time.Since(start).Nanoseconds())
}
