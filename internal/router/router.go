// Package router maps client paths to views and decides whether a view may
// be entered.
package router

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

const (
	RouteLogin = "login"
	RouteTasks = "tasks"

	LoginPath = "/login"
)

// Route is a resolved client path
type Route struct {
	Name    string
	Path    string
	Params  map[string]string
	Guarded bool
}

// UserID returns the userId route parameter, if any
func (r Route) UserID() (string, bool) {
	id, ok := r.Params["userId"]
	return id, ok && id != ""
}

// Navigator moves the client to another path
type Navigator interface {
	Navigate(path string)
}

// Router resolves paths against the client's routing table
type Router struct {
	mux     *mux.Router
	guarded map[string]bool
}

// New builds the routing table: /login, /tasks/{userId} (guarded), with / and
// any unknown path falling back to /login.
func New() *Router {
	m := mux.NewRouter()
	m.Path(LoginPath).Name(RouteLogin)
	m.Path("/tasks/{userId}").Name(RouteTasks)

	return &Router{
		mux:     m,
		guarded: map[string]bool{RouteTasks: true},
	}
}

// Resolve matches path to a route. Unmatched paths resolve to login.
func (r *Router) Resolve(path string) Route {
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: path}}

	var match mux.RouteMatch
	if !r.mux.Match(req, &match) || match.Route == nil {
		return r.login()
	}

	name := match.Route.GetName()
	return Route{
		Name:    name,
		Path:    path,
		Params:  match.Vars,
		Guarded: r.guarded[name],
	}
}

func (r *Router) login() Route {
	return Route{Name: RouteLogin, Path: LoginPath, Params: map[string]string{}}
}

// TasksPath returns the task view path for userID
func TasksPath(userID string) string {
	return "/tasks/" + url.PathEscape(userID)
}
