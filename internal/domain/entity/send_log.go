package entity

import "time"

// DispatchMode describes how a newsletter was handed to the e-mail provider.
type DispatchMode string

const (
	DispatchModeIndividual DispatchMode = "individual"
	DispatchModeBatch      DispatchMode = "batch"
	DispatchModeSandbox    DispatchMode = "sandbox"
)

// SendLog is the persisted record of one newsletter dispatch.
type SendLog struct {
	ID         int64
	Subject    string
	Mode       DispatchMode
	TestMode   bool
	Recipients int
	Sent       int
	Failed     int
	Error      string
	CreatedAt  time.Time
}
