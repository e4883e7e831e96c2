// Package terminal hosts the Landing, Main and Detail screens on a
// line-oriented terminal.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"weather-app/navigation"
	"weather-app/screens"
)

// App is the interactive terminal front-end
type App struct {
	input   *Input
	out     io.Writer
	nav     *navigation.Navigator
	main    *screens.Main
	landing *screens.Landing
	logger  *slog.Logger

	changes chan struct{}
}

// Options wires an App
type Options struct {
	Input   *Input
	Out     io.Writer // should be the same SyncWriter toasts are written to
	Nav     *navigation.Navigator
	Main    *screens.Main
	Landing *screens.Landing
	Logger  *slog.Logger
}

// New creates the terminal app
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	a := &App{
		input:   opts.Input,
		out:     SyncWriter(opts.Out),
		nav:     opts.Nav,
		main:    opts.Main,
		landing: opts.Landing,
		logger:  opts.Logger.With("component", "terminal"),
		changes: make(chan struct{}, 1),
	}

	// Coalesce change signals; the loop re-reads a full snapshot anyway
	a.main.Subscribe(func() {
		select {
		case a.changes <- struct{}{}:
		default:
		}
	})
	return a
}

// Run plays the intro, bootstraps Main and then serves commands until
// quit, end of input or ctx is done
func (a *App) Run(ctx context.Context) error {
	if a.landing != nil {
		if err := a.landing.Run(ctx); err != nil {
			return err
		}
	} else if err := a.nav.EnterMain(); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Type 'help' for commands.")
	if err := a.main.Mount(ctx); err != nil {
		return fmt.Errorf("failed to start main screen: %w", err)
	}
	a.drain()
	a.render()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-a.input.Lines():
			if !ok {
				fmt.Fprintln(a.out, "\nBye!")
				return nil
			}
			line = strings.TrimSpace(line)
			if line == "" {
				a.prompt()
				continue
			}
			if done := a.handle(ctx, line); done {
				return nil
			}

		case <-a.changes:
			if a.nav.Current() == navigation.Main {
				a.render()
			}
		}
	}
}

// handle dispatches a single line of input. Returns true when the user wants to quit.
func (a *App) handle(ctx context.Context, line string) bool {
	parts := strings.SplitN(line, " ", 2)
	cmd := strings.ToLower(parts[0])
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "exit", "quit", "q":
		fmt.Fprintln(a.out, "Bye!")
		return true

	case "help", "h", "?":
		a.printHelp()
		a.prompt()
		return false
	}

	if a.nav.Current() == navigation.Detail {
		if cmd != "back" && cmd != "b" {
			fmt.Fprintln(a.out, "Type 'back' to return to the forecast.")
			a.prompt()
			return false
		}
		if err := a.nav.Back(); err != nil {
			a.logger.Error("navigation failed", "error", err)
		}
		a.drain()
		a.render()
		return false
	}

	switch cmd {
	case "search", "s":
		a.main.SetQuery(arg)

	case "clear":
		a.main.ClearSearch()

	case "pick", "p":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			fmt.Fprintln(a.out, "Error: provide a result number, e.g.  pick 1")
			a.prompt()
			return false
		}
		if err := a.main.SelectResult(ctx, n-1); err != nil {
			fmt.Fprintln(a.out, "Error:", err)
			a.prompt()
			return false
		}

	case "here":
		// Failures are reported to the user as toasts
		if err := a.main.UseDeviceLocation(ctx); err != nil {
			a.logger.Info("device location unavailable", "error", err)
		}

	case "day", "d":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintln(a.out, "Error: provide a day number, e.g.  day 1")
			a.prompt()
			return false
		}
		if err := a.main.OpenDay(n); err != nil {
			if errors.Is(err, screens.ErrNoSuchDay) {
				fmt.Fprintln(a.out, "Error:", err)
			} else {
				a.logger.Error("failed to open day", "day", n, "error", err)
			}
			a.prompt()
			return false
		}

	case "back", "b":
		fmt.Fprintln(a.out, "Already on the main screen.")
		a.prompt()
		return false

	default:
		fmt.Fprintf(a.out, "Unknown command %q. Type 'help' for available commands.\n", cmd)
		a.prompt()
		return false
	}

	a.drain()
	a.render()
	return false
}

// drain drops a pending change signal; the caller renders right after
func (a *App) drain() {
	select {
	case <-a.changes:
	default:
	}
}

func (a *App) render() {
	switch a.nav.Current() {
	case navigation.Detail:
		p, ok := a.nav.Params()
		if !ok {
			return
		}
		frame(a.out, func(w io.Writer) {
			fmt.Fprintln(w)
			RenderDetail(w, screens.NewDetailView(p.Forecast, a.main))
			fmt.Fprint(w, "> ")
		})
	case navigation.Main:
		state := a.main.Snapshot()
		frame(a.out, func(w io.Writer) {
			fmt.Fprintln(w)
			RenderMain(w, state, a.main.DayLabel)
			fmt.Fprint(w, "> ")
		})
	}
}

func (a *App) prompt() {
	fmt.Fprint(a.out, "> ")
}

func (a *App) printHelp() {
	frame(a.out, func(w io.Writer) {
		fmt.Fprintln(w, "Commands:")
		fmt.Fprintln(w, "  search <text>   Search for a location (s)")
		fmt.Fprintln(w, "  pick <n>        Use the n-th search result (p)")
		fmt.Fprintln(w, "  clear           Clear the search")
		fmt.Fprintln(w, "  here            Use the device location")
		fmt.Fprintln(w, "  day <n>         Show details for upcoming day n (d)")
		fmt.Fprintln(w, "  back            Return from the detail view (b)")
		fmt.Fprintln(w, "  help            Show this help")
		fmt.Fprintln(w, "  quit            Quit the program")
	})
}
