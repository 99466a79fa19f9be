package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/kelsos/atom-tasks/internal/app"
	"github.com/kelsos/atom-tasks/internal/backup"
	"github.com/kelsos/atom-tasks/internal/config"
	"github.com/kelsos/atom-tasks/internal/console"
	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/output"
	"github.com/kelsos/atom-tasks/internal/theme"
	"github.com/kelsos/atom-tasks/internal/tui"
	"github.com/kelsos/atom-tasks/internal/utils"
)

var errNotLoggedIn = errors.New("not logged in, run `atom-tasks login <email>` first")

var overrides app.Overrides

func loadConfig() (*config.Config, error) {
	return app.LoadConfig(overrides)
}

// withApp builds the components for one command and closes them afterwards
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, theme.DetectTerminal)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return fn(ctx, a)
}

func newPrinter(a *app.App) *console.Printer {
	return console.NewPrinter(os.Stderr, a.Theme.Palette())
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the TUI owns the terminal, so logs go to a file
	logPath, err := logger.InitFileOnly(cfg.DataDir)
	if err != nil {
		return err
	}
	defer logger.Close()

	a, err := app.New(cfg, theme.DetectTerminal)
	if err != nil {
		return err
	}
	defer a.Close()

	err = tui.Run(tui.Deps{
		Router:    a.Router,
		Sessions:  a.Sessions,
		Theme:     a.Theme,
		StartPath: a.StartPath(),
		NewLogin:  a.LoginFlow,
		NewTasks:  a.TaskListFlow,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "see %s for details\n", logPath)
	}
	return err
}

func loginCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in, creating the account if it does not exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				prompter := console.NewPrompter(os.Stdin, os.Stderr)
				prompter.AssumeYes = yes

				flow := a.LoginFlow(prompter, newPrinter(a), &console.Paths{})
				if err := flow.Enter(); err != nil {
					return err
				}

				res, err := flow.Submit(ctx, args[0])
				if err != nil {
					return err
				}
				switch res.Outcome {
				case flows.LoginDeclined:
					fmt.Println("Account not created.")
				case flows.LoginCreated:
					fmt.Printf("Created account %s and logged in.\n", res.UserID)
				default:
					fmt.Printf("Logged in as %s.\n", res.UserID)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Create the account without asking")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				if err := a.Sessions.Clear(); err != nil {
					return err
				}
				fmt.Println("Logged out.")
				return nil
			})
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				sess := a.Sessions.Get()
				if sess == nil {
					return errNotLoggedIn
				}
				fmt.Printf("%s (%s)\n", sess.Email, sess.UserID)
				return nil
			})
		},
	}
}

func usersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect user accounts",
	}

	usersCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				users, err := a.Users.GetAll(ctx)
				if err != nil {
					return err
				}
				if len(users) == 0 {
					fmt.Println("No users.")
				}
				for _, u := range users {
					output.FormatUser(os.Stdout, u, time.Now())
				}
				return nil
			})
		},
	})
	return usersCmd
}

func themeCmd() *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or switch the color theme",
	}

	show := func(dark bool) {
		p := theme.PaletteFor(dark)
		name := "light"
		if dark {
			name = "dark"
		}
		fmt.Printf("%s (%s)\n", name, p.ColorHint)
	}

	themeCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				show(a.Theme.IsDark())
				return nil
			})
		},
	})

	themeCmd.AddCommand(&cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				dark, err := a.Theme.Toggle()
				if err != nil {
					return err
				}
				show(dark)
				return nil
			})
		},
	})
	return themeCmd
}

func backupCmd() *cobra.Command {
	var backupDir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the local session and preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, err := backup.Create(cfg.DataDir, backupDir)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
	cmd.Flags().StringVar(&backupDir, "backup-dir", "", "Directory where the archive is written (default: <data-dir>/backups)")
	return cmd
}

func debugCmd() *cobra.Command {
	debugCmd := &cobra.Command{
		Use:    "debug",
		Short:  "Developer helpers",
		Hidden: true,
	}

	debugCmd.AddCommand(&cobra.Command{
		Use:   "token <json>",
		Short: "Sign a JSON payload the way requests are signed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data interface{}
			if err := json.Unmarshal([]byte(args[0]), &data); err != nil {
				return fmt.Errorf("payload is not valid JSON: %w", err)
			}

			return withApp(func(ctx context.Context, a *app.App) error {
				token, err := a.Signer.Sign(data)
				if err != nil {
					return err
				}
				payload, err := a.Signer.Verify(token)
				if err != nil {
					return err
				}

				fmt.Println(token)
				fmt.Printf("data:    %s\n", payload.Data)
				fmt.Printf("expires: %s (ttl %s)\n", payload.ExpiresAt.Format(time.RFC3339), a.Signer.TTL())
				return nil
			})
		},
	})
	return debugCmd
}

func main() {
	utils.LoadEnvironment()
	logger.Init()

	rootCmd := &cobra.Command{
		Use:          "atom-tasks",
		Short:        "A terminal client for the task service",
		Long:         `atom-tasks manages your tasks from the terminal. Run it without arguments for the interactive view.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&overrides.ConfigFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/atom-tasks/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&overrides.APIURL, "api-url", "", "Base URL of the task API")
	rootCmd.PersistentFlags().StringVar(&overrides.DataDir, "data-dir", "", "Directory for local state (default: ~/.atom-tasks)")
	rootCmd.PersistentFlags().StringVar(&overrides.StorageBackend, "storage", "", "Local storage backend: file or sqlite")

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(themeCmd())
	rootCmd.AddCommand(backupCmd())
	rootCmd.AddCommand(debugCmd())

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}
