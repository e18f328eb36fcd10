package main

import (
	"adaptive/internal/chat"
	"adaptive/internal/session"
	"adaptive/internal/workspace"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the assistant about the active file",
	Long: `Sends one message through a running relay (server.relay_url). The
active tab, its current contents and the problem statement are attached as
context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")
	return withWorkspace(func(w *workspace.Workspace, sessions *session.Store) error {
		if err := w.Mount(nil); err != nil {
			return err
		}

		ex, err := w.Send(cmd.Context(), message)
		if err != nil {
			return err
		}
		if ex.State == chat.Failed {
			logger.Warn("Assistant request failed", zap.String("exchange", ex.ID), zap.Error(ex.Err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), ex.Reply)
		return nil
	})
}
