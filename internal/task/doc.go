// Package task runs long operations off the interactive goroutine.
//
// A [Loop] is the single goroutine that owns interaction state. [Run] starts
// a unit of work on its own goroutine and posts exactly one completion
// callback back through a [Dispatcher], so callbacks may mutate loop-owned
// state without locking. Tasks cannot be cancelled once started.
//
// [Clock] provides single-shot timers. [SystemClock] uses real time;
// [FakeClock] advances only when told to, for tests.
package task
