// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/utils"
)

const (
	markDone    = "[x]"
	markPending = "[ ]"
)

// FormatTask formats a task line.
// Format: "{MARK} {ID:<w}  {TITLE}  ({DATE})\n"
func FormatTask(w io.Writer, idWidth int, task models.Task) {
	mark := markPending
	if task.Completed {
		mark = markDone
	}
	fmt.Fprintf(w, "%s %-*s  %s  (%s)\n", mark, idWidth, task.ID, normalizeText(task.Title), utils.FormatDate(task.CreatedAt))
	if desc := normalizeText(task.Description); desc != "" && desc != untitled {
		fmt.Fprintf(w, "    %*s%s\n", idWidth, "", desc)
	}
}

// FormatTasks writes tasks in the given order; an empty list prints a hint.
func FormatTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks yet.")
		return
	}

	width := 0
	for _, task := range tasks {
		if n := len(task.ID.String()); n > width {
			width = n
		}
	}
	for _, task := range tasks {
		FormatTask(w, width, task)
	}
}

// FormatUser formats a user line for the users command, with the account
// age when the backend reports a creation time.
func FormatUser(w io.Writer, user models.User, now time.Time) {
	if !user.CreatedAt.Valid() {
		fmt.Fprintf(w, "%s  %s\n", user.ID, user.Email)
		return
	}
	fmt.Fprintf(w, "%s  %s  (joined %s)\n", user.ID, user.Email, utils.FormatAge(user.CreatedAt.Time, now))
}

const untitled = "(untitled)"

// normalizeText replaces newlines with spaces; blank text becomes "(untitled)"
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return untitled
	}
	return s
}
