package cleanup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/imamik/agentctl/internal/provisioning"
)

// confirmPhrase must be typed exactly to arm the teardown.
const confirmPhrase = "delete everything"

// abortWindow is how long the operator has to interrupt after both
// confirmations before anything is touched.
const abortWindow = 5 * time.Second

// ErrAborted is returned when the operator declines or interrupts
// before teardown starts. Nothing has been modified at that point.
var ErrAborted = fmt.Errorf("cleanup aborted")

// Confirmer gates irreversible teardown behind operator consent.
type Confirmer interface {
	Confirm(ctx context.Context, scope []string) error
}

// InteractiveConfirmer runs the two-stage terminal confirmation: a typed
// phrase, an explicit yes/no, then a countdown during which an interrupt
// still aborts cleanly.
type InteractiveConfirmer struct {
	Observer provisioning.Observer

	// Sleep is injectable so tests never wait out the abort window.
	Sleep func(ctx context.Context, d time.Duration) error

	// Prompt stages are replaced in tests to avoid driving a terminal.
	promptPhrase func() (string, error)
	promptYes    func() (bool, error)
}

// NewInteractiveConfirmer creates a terminal-backed confirmer.
func NewInteractiveConfirmer(observer provisioning.Observer) *InteractiveConfirmer {
	return &InteractiveConfirmer{
		Observer:     observer,
		Sleep:        sleepContext,
		promptPhrase: runPhrasePrompt,
		promptYes:    runYesPrompt,
	}
}

// Confirm implements Confirmer.
func (c *InteractiveConfirmer) Confirm(ctx context.Context, scope []string) error {
	c.Observer.Printf("This will permanently delete:\n  - %s", strings.Join(scope, "\n  - "))

	phrase, err := c.promptPhrase()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAborted, err)
	}
	if strings.TrimSpace(phrase) != confirmPhrase {
		return fmt.Errorf("%w: confirmation phrase did not match", ErrAborted)
	}

	proceed, err := c.promptYes()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAborted, err)
	}
	if !proceed {
		return ErrAborted
	}

	c.Observer.Printf("Starting teardown in %v, press Ctrl+C to abort...", abortWindow)
	if err := c.Sleep(ctx, abortWindow); err != nil {
		return fmt.Errorf("%w: %v", ErrAborted, err)
	}
	return nil
}

func runPhrasePrompt() (string, error) {
	var phrase string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Type %q to continue", confirmPhrase)).
				Value(&phrase),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return phrase, nil
}

func runYesPrompt() (bool, error) {
	var proceed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Really delete all listed resources?").
				Affirmative("Yes, delete").
				Negative("No, abort").
				Value(&proceed),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}
	return proceed, nil
}

// AutoConfirmer skips the interactive gate, abort window included. It
// exists for tests; no CLI flag wires it in.
type AutoConfirmer struct{}

func (AutoConfirmer) Confirm(context.Context, []string) error { return nil }

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
