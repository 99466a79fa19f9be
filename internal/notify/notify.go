// Package notify carries transient user-facing messages from the flows to
// whatever surface is showing them.
package notify

type Level int

const (
	Info Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Notification struct {
	Level   Level
	Message string
}

// Notifier shows a notification to the user
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a plain function to Notifier
type Func func(Notification)

func (f Func) Notify(n Notification) {
	f(n)
}

// Discard drops every notification
var Discard Notifier = Func(func(Notification) {})

// Send is shorthand for n.Notify with the given level and message
func Send(n Notifier, level Level, msg string) {
	n.Notify(Notification{Level: level, Message: msg})
}
