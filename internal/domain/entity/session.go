package entity

type SessionState string

const (
	SessionUninitialized SessionState = "uninitialized"
	SessionLaunching     SessionState = "launching"
	SessionReady         SessionState = "ready"
	SessionFailed        SessionState = "failed"
	SessionClosed        SessionState = "closed"
)
