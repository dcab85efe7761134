package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/breathe/internal/breathing"
	"github.com/zjrosen/breathe/internal/breathing/domain"
)

var (
	runFor  time.Duration
	runMute bool
)

var runCmd = &cobra.Command{
	Use:   "run <exercise-id>",
	Short: "Run a breathing exercise without the interactive view",
	Long: `Run a breathing session in the terminal, printing each instruction as it
begins. The session ends after --for, or on Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().DurationVar(&runFor, "for", 0, "stop after this long (default: until interrupted)")
	runCmd.Flags().BoolVar(&runMute, "mute", false, "do not play ambient tracks")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	printer := newInstructionPrinter(cmd.OutOrStdout())
	a, err := newApp(cmd.Context(), cfg, appHooks{
		OnChange: printer.OnChange,
		OnWarning: func(err error) {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
		},
		Mute: runMute,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ex, ok := a.registry.Get(args[0])
	if !ok {
		return fmt.Errorf("unknown exercise %q (run 'breathe exercises' to list them)", args[0])
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", ex.Name, ex.Pattern())
	if err := runSession(ctx, a.host, ex, runFor); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session complete.")
	return nil
}

// sessionHost is the part of relaxation.Host a headless run needs.
type sessionHost interface {
	Begin(ctx context.Context, ex *domain.Exercise) error
	End()
}

// runSession runs ex until ctx is done or d elapses (d <= 0 waits for ctx).
func runSession(ctx context.Context, host sessionHost, ex *domain.Exercise, d time.Duration) error {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if err := host.Begin(ctx, ex); err != nil {
		return err
	}
	<-ctx.Done()
	host.End()
	return nil
}

// instructionPrinter writes a line whenever a step begins, including a
// single-step exercise starting its next cycle.
type instructionPrinter struct {
	w io.Writer

	mu     sync.Mutex
	latest breathing.State
}

func newInstructionPrinter(w io.Writer) *instructionPrinter {
	return &instructionPrinter{w: w}
}

// OnChange is a breathing.ChangeCallback. Snapshots older than the newest
// one seen are ignored, so nothing prints after the session ends.
func (p *instructionPrinter) OnChange(s breathing.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.OlderThan(p.latest) {
		return
	}
	p.latest = s

	if !s.Running || s.Remaining != s.Exercise.Steps[s.StepIndex].Seconds {
		return
	}
	instruction, _ := s.Instruction()
	fmt.Fprintf(p.w, "  %-28s %ds\n", instruction, s.Remaining)
}
