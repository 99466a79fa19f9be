// Package console answers flow dialogs and shows notifications on a plain
// terminal for the non-interactive commands.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/notify"
	"github.com/kelsos/atom-tasks/internal/theme"
)

// Prompter implements flows.Dialogs over line-based input
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// AssumeYes accepts every confirmation without reading input
	AssumeYes bool

	// Form, when set, answers task forms. Empty fields keep the form's
	// initial value.
	Form *models.TaskInput
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) Confirm(ctx context.Context, req flows.ConfirmRequest) (bool, error) {
	question := req.Title
	if req.Message != "" {
		question = req.Title + " " + req.Message
	}

	if p.AssumeYes {
		fmt.Fprintf(p.out, "%s [y/N]: y\n", question)
		return true, nil
	}

	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	line, err := p.readLine(ctx)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *Prompter) TaskForm(ctx context.Context, req flows.TaskFormRequest) (models.TaskInput, bool, error) {
	if p.Form != nil {
		in := *p.Form
		if in.Title == "" {
			in.Title = req.Initial.Title
		}
		if in.Description == "" {
			in.Description = req.Initial.Description
		}
		return in, true, nil
	}

	if req.Heading != "" {
		fmt.Fprintln(p.out, req.Heading)
	}

	title, err := p.ask(ctx, "Title", req.Initial.Title)
	if errors.Is(err, io.EOF) {
		return models.TaskInput{}, false, nil
	}
	if err != nil {
		return models.TaskInput{}, false, err
	}

	desc, err := p.ask(ctx, "Description", req.Initial.Description)
	if errors.Is(err, io.EOF) {
		return models.TaskInput{}, false, nil
	}
	if err != nil {
		return models.TaskInput{}, false, err
	}

	return models.TaskInput{Title: title, Description: desc}, true, nil
}

// ask prompts for one field; an empty answer keeps current
func (p *Prompter) ask(ctx context.Context, label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if line == "" {
		return current, nil
	}
	return line, nil
}

// readLine returns the next trimmed line. A final line without a newline
// is returned as is; io.EOF is reported only when nothing was read.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if !errors.Is(err, io.EOF) {
			logger.Error("Failed to read answer: %v", err)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Printer writes notifications one per line
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	styles map[notify.Level]lipgloss.Style
}

func NewPrinter(out io.Writer, palette theme.Palette) *Printer {
	return &Printer{
		out: out,
		styles: map[notify.Level]lipgloss.Style{
			notify.Info:    lipgloss.NewStyle().Foreground(palette.Accent),
			notify.Success: lipgloss.NewStyle().Foreground(palette.Success),
			notify.Error:   lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
		},
	}
}

func (p *Printer) Notify(n notify.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.styles[n.Level].Render(n.Message))
}

// Paths records navigation requests; the commands read the last one to
// tell where a flow wanted to go.
type Paths struct {
	mu   sync.Mutex
	seen []string
}

func (p *Paths) Navigate(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	logger.Debug("Flow navigated to %s", path)
	p.seen = append(p.seen, path)
}

func (p *Paths) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.seen) == 0 {
		return ""
	}
	return p.seen[len(p.seen)-1]
}
