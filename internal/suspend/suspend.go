// Package suspend pauses and resumes the poll loop across system
// sleep. Polling a powered-down controller only produces transport
// errors, so the daemon stops the driver before the machine sleeps and
// restarts it on wake.
package suspend

// Hooks are invoked around a sleep transition. OnSleep runs when the
// system announces it is about to suspend; OnWake runs after resume.
// Both are called from the watcher goroutine.
type Hooks struct {
	OnSleep func()
	OnWake  func()
}
