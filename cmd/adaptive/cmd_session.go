package main

import (
	"adaptive/internal/assessment"
	"adaptive/internal/chat"
	"adaptive/internal/session"
	"adaptive/internal/workspace"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or manage the local assessment session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted session and workspace state",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

var sessionBeginCmd = &cobra.Command{
	Use:   "begin [email]",
	Short: "Pass the email gate and start a new session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionBegin,
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every persisted session key",
	Args:  cobra.NoArgs,
	RunE:  runSessionReset,
}

var openCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Open a workspace file in a tab and print it",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the assessment",
	Args:  cobra.NoArgs,
	RunE:  runSubmit,
}

var submitConfirmed bool

func init() {
	submitCmd.Flags().BoolVarP(&submitConfirmed, "yes", "y", false, "Confirm submission")
}

// withWorkspace opens the store, builds a workspace over it and runs fn.
// The workspace relay is only used by chat.
func withWorkspace(fn func(w *workspace.Workspace, sessions *session.Store) error) error {
	sessions, kv, err := openSessions()
	if err != nil {
		return err
	}
	defer kv.Close()

	w, err := workspace.New(sessions, workspace.Options{
		Assessment: assessment.Default(),
		Relay:      chat.NewHTTPRelay(cfg.Server.RelayURL, cfg.GetWriteTimeout()),
		Duration:   cfg.GetSessionDuration(),
		OnSubmit: func(r workspace.SubmitReason) {
			logger.Info("Assessment submitted", zap.String("reason", string(r)))
		},
	})
	if err != nil {
		return err
	}
	defer w.Close()
	return fn(w, sessions)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace.Workspace, sessions *session.Store) error {
		snap, err := sessions.Snapshot()
		if err != nil {
			return err
		}
		status, err := w.Status()
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), struct {
			Session   session.Session  `json:"session"`
			Workspace workspace.Status `json:"workspace"`
		}{snap, status})
	})
}

func runSessionBegin(cmd *cobra.Command, args []string) error {
	sessions, kv, err := openSessions()
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := sessions.Begin(args[0]); err != nil {
		if errors.Is(err, session.ErrInvalidEmail) {
			return fmt.Errorf("please enter a valid email address")
		}
		return err
	}

	a := assessment.Default()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n%s\n\n", workspace.StepLabel(session.StageInstructions), a.Instructions.Summary)
	for _, f := range a.Instructions.Facts {
		fmt.Fprintf(out, "  %s: %s\n", f.Label, f.Value)
	}
	fmt.Fprintln(out)
	for _, item := range a.Instructions.Checklist {
		fmt.Fprintf(out, "  [ ] %s\n", item)
	}
	fmt.Fprintf(out, "\n%s\n", a.ProblemStatement)
	return nil
}

func runSessionReset(cmd *cobra.Command, args []string) error {
	sessions, kv, err := openSessions()
	if err != nil {
		return err
	}
	defer kv.Close()

	if err := sessions.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session reset.")
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace.Workspace, sessions *session.Store) error {
		if err := w.Mount(nil); err != nil {
			return err
		}
		if err := w.Editor().Open(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", strings.Join(w.Editor().OpenTabs(), " | "), w.Editor().ActiveContent())
		return nil
	})
}

func runSubmit(cmd *cobra.Command, args []string) error {
	return withWorkspace(func(w *workspace.Workspace, sessions *session.Store) error {
		if err := w.Mount(nil); err != nil {
			return err
		}
		if w.Tick() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Time is up. The assessment was submitted automatically.")
			return nil
		}
		if err := w.RequestSubmit(); err != nil {
			return err
		}
		if !submitConfirmed {
			w.CancelSubmit()
			fmt.Fprintln(cmd.OutOrStdout(), "Are you sure you want to submit? Run again with --yes to confirm.")
			return nil
		}
		if err := w.ConfirmSubmit(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Thanks for completing the assessment!\nYour results are being processed.")
		return nil
	})
}
