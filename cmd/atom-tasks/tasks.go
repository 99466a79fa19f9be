package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/kelsos/atom-tasks/internal/app"
	"github.com/kelsos/atom-tasks/internal/console"
	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/output"
	"github.com/kelsos/atom-tasks/internal/router"
)

// openTaskList runs the guard for the stored session and loads its tasks
func openTaskList(ctx context.Context, a *app.App, prompter *console.Prompter) (*flows.TaskListFlow, error) {
	printer := newPrinter(a)

	route := a.Router.Resolve(a.StartPath())
	if route.Name != router.RouteTasks {
		return nil, errNotLoggedIn
	}
	if d := a.Guard(printer).CanActivate(route); !d.Allow {
		return nil, errNotLoggedIn
	}

	flow := a.TaskListFlow(prompter, printer, &console.Paths{})
	if err := flow.Activate(ctx, route); err != nil {
		flow.Close()
		return nil, err
	}
	return flow, nil
}

func taskFlow(fn func(ctx context.Context, flow *flows.TaskListFlow) error, setup func(p *console.Prompter)) error {
	return withApp(func(ctx context.Context, a *app.App) error {
		prompter := console.NewPrompter(os.Stdin, os.Stderr)
		if setup != nil {
			setup(prompter)
		}

		flow, err := openTaskList(ctx, a, prompter)
		if err != nil {
			return err
		}
		defer flow.Close()

		if err := fn(ctx, flow); err != nil {
			return err
		}
		output.FormatTasks(os.Stdout, flow.Tasks())
		return nil
	})
}

// formFrom presets the form when either flag was given
func formFrom(cmd *cobra.Command, title, description string) func(p *console.Prompter) {
	return func(p *console.Prompter) {
		if cmd.Flags().Changed("title") || cmd.Flags().Changed("description") {
			p.Form = &models.TaskInput{Title: title, Description: description}
		}
	}
}

func tasksCmd() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage the tasks of the logged in user",
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all {
				return taskFlow(func(context.Context, *flows.TaskListFlow) error { return nil }, nil)
			}
			return withApp(func(ctx context.Context, a *app.App) error {
				tasks, err := a.Tasks.GetAll(ctx)
				if err != nil {
					return err
				}
				output.FormatTasks(os.Stdout, models.SortByCreatedDesc(tasks))
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&all, "all", false, "List the tasks of every user")

	var addTitle, addDesc string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return taskFlow(func(ctx context.Context, flow *flows.TaskListFlow) error {
				return flow.Create(ctx)
			}, formFrom(cmd, addTitle, addDesc))
		},
	}
	addCmd.Flags().StringVar(&addTitle, "title", "", "Task title (prompted when omitted)")
	addCmd.Flags().StringVar(&addDesc, "description", "", "Task description (prompted when omitted)")

	var editTitle, editDesc string
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or description of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return taskFlow(func(ctx context.Context, flow *flows.TaskListFlow) error {
				return flow.Edit(ctx, models.TaskID(args[0]))
			}, formFrom(cmd, editTitle, editDesc))
		},
	}
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title (kept when omitted)")
	editCmd.Flags().StringVar(&editDesc, "description", "", "New description (kept when omitted)")

	toggleCmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return taskFlow(func(ctx context.Context, flow *flows.TaskListFlow) error {
				return flow.Toggle(ctx, models.TaskID(args[0]))
			}, nil)
		},
	}

	var yes bool
	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return taskFlow(func(ctx context.Context, flow *flows.TaskListFlow) error {
				return flow.Delete(ctx, models.TaskID(args[0]))
			}, func(p *console.Prompter) { p.AssumeYes = yes })
		},
	}
	rmCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	tasksCmd.AddCommand(listCmd, addCmd, editCmd, toggleCmd, rmCmd)
	return tasksCmd
}
