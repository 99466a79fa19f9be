package router

import (
	apperrors "github.com/kelsos/atom-tasks/internal/errors"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/notify"
	"github.com/kelsos/atom-tasks/internal/session"
)

const (
	MsgInvalidSession = "Invalid session. Please log in again."
	MsgUnauthorized   = "Unauthorized access. Please log in again."
)

// Decision is the outcome of a guard check
type Decision struct {
	Allow    bool
	Redirect string
	Reason   error
	Message  string
}

// Check decides whether sess may enter route. A missing session is rejected
// first, then a userId route parameter that differs from the session's.
func Check(sess *session.Session, route Route) Decision {
	if sess == nil {
		return Decision{Redirect: LoginPath, Reason: apperrors.ErrNoSession, Message: MsgInvalidSession}
	}

	if id, ok := route.Params["userId"]; ok && id != sess.UserID {
		return Decision{Redirect: LoginPath, Reason: apperrors.ErrSessionMismatch, Message: MsgUnauthorized}
	}

	return Decision{Allow: true}
}

// SessionReader is the part of the session store the guard needs
type SessionReader interface {
	Get() *session.Session
}

// Guard applies Check to guarded routes and tells the user when it rejects
type Guard struct {
	sessions SessionReader
	notifier notify.Notifier
}

func NewGuard(sessions SessionReader, notifier notify.Notifier) *Guard {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Guard{sessions: sessions, notifier: notifier}
}

// CanActivate reports whether route may be entered. Unguarded routes are
// always allowed.
func (g *Guard) CanActivate(route Route) Decision {
	if !route.Guarded {
		return Decision{Allow: true}
	}

	d := Check(g.sessions.Get(), route)
	if !d.Allow {
		logger.Warn("Guard rejected %s: %v", route.Path, d.Reason)
		notify.Send(g.notifier, notify.Error, d.Message)
	}
	return d
}
