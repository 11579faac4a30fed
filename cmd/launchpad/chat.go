package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launchpad/internal/assistant"
)

func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask the deployment assistant questions",
		Long: `Start an interactive conversation with the ESA deployment assistant.
Type /quit or send EOF to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, _, err := openCore(cmd.Context())
			if err != nil {
				return err
			}
			defer core.Close()

			out := cmd.OutOrStdout()
			var history []assistant.ChatMessage
			sc := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !sc.Scan() {
					fmt.Fprintln(out)
					return sc.Err()
				}
				line := strings.TrimSpace(sc.Text())
				if line == "" {
					continue
				}
				if line == "/quit" || line == "/exit" {
					return nil
				}
				history = append(history, assistant.NewMessage(assistant.RoleUser, line))
				reply := core.Assistant.Reply(cmd.Context(), history)
				history = append(history, assistant.NewMessage(assistant.RoleAssistant, reply))
				fmt.Fprintln(out, reply)
			}
		},
	}
	return cmd
}
