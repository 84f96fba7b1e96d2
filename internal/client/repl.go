package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const prompt = "> "

// REPL drives a Controller from line-oriented input.
type REPL struct {
	ctrl *Controller
	in   io.Reader
	out  io.Writer
	log  zerolog.Logger
	now  func() time.Time
}

func NewREPL(ctrl *Controller, in io.Reader, out io.Writer, logger zerolog.Logger) *REPL {
	return &REPL{
		ctrl: ctrl,
		in:   in,
		out:  out,
		log:  logger.With().Str("component", "REPL").Logger(),
		now:  time.Now,
	}
}

// Run reads commands until quit, end of input or ctx cancellation.
func (r *REPL) Run(ctx context.Context) error {
	// Scan blocks on the reader and cannot be interrupted. On cancellation
	// the goroutine stays parked in Scan until input arrives or the
	// process exits.
	scanCtx, stopScan := context.WithCancel(ctx)
	defer stopScan()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-scanCtx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	fmt.Fprintln(r.out, helpText)
	for {
		fmt.Fprint(r.out, prompt)

		select {
		case <-ctx.Done():
			fmt.Fprintln(r.out)
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(r.out)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if quit := r.exec(ctx, line); quit {
				return nil
			}
		}
	}
}

// exec runs one command line and reports whether the session should end.
func (r *REPL) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(r.out, helpText)
	case "search", "s":
		r.report(r.ctrl.SubmitCity(ctx, arg))
	case "locate", "l":
		r.report(r.ctrl.SubmitLocation(ctx))
	case "unit", "u":
		u, err := ParseUnit(arg)
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		r.ctrl.SetUnit(u)
		r.show()
	case "toggle", "t":
		r.ctrl.ToggleUnit()
		r.show()
	case "history", "h":
		RenderHistory(r.out, r.ctrl.Snapshot().History)
	case "pick", "p":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(r.out, "pick needs a history number, got %q\n", arg)
			return false
		}
		r.report(r.ctrl.SelectHistory(ctx, n-1))
	case "show":
		r.show()
	default:
		r.report(r.ctrl.SubmitCity(ctx, strings.TrimSpace(line)))
	}
	return false
}

// report renders the view after a fetch; controller-level failures are
// already part of the state.
func (r *REPL) report(err error) {
	switch {
	case errors.Is(err, ErrRequestInFlight), errors.Is(err, ErrHistoryIndex):
		fmt.Fprintln(r.out, err)
		return
	case err != nil:
		r.log.Debug().Err(err).Msg("command failed")
	}
	r.show()
}

func (r *REPL) show() {
	Render(r.out, r.ctrl.Snapshot(), r.now())
}
