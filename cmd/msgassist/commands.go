package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"msgassist/pkg/ai"
	"msgassist/pkg/chat"
	"msgassist/pkg/store"
	"msgassist/pkg/version"

	"github.com/spf13/cobra"
)

func newAskCmd(opts *rootOptions) *cobra.Command {
	var prompt string
	var stream bool

	cmd := &cobra.Command{
		Use:   "ask <message-id>",
		Short: "Ask the AI about one message and print the answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireChannel(); err != nil {
				return err
			}
			a, st, err := opts.newAssistant()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			target, err := a.Lookup(ctx, opts.channelID, args[0])
			if err != nil {
				return err
			}
			session := a.Open(ctx, target)

			out := cmd.OutOrStdout()
			var result ai.Result
			if stream {
				streamed := false
				result = session.AskStream(ctx, prompt, func(delta string) {
					streamed = true
					fmt.Fprint(out, delta)
				})
				if streamed && result.OK() {
					fmt.Fprintln(out)
				} else {
					fmt.Fprintln(out, result.Display())
				}
			} else {
				result = session.Ask(ctx, prompt)
				fmt.Fprintln(out, result.Display())
			}

			if !result.OK() {
				return errAskFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "question to ask about the message")
	cmd.Flags().BoolVar(&stream, "stream", false, "print the answer as it arrives")
	return cmd
}

func newContextCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "context <message-id>",
		Short: "Print the messages that would be sent as context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireChannel(); err != nil {
				return err
			}
			a, st, err := opts.newAssistant()
			if err != nil {
				return err
			}
			defer st.Close()

			target, err := a.Lookup(cmd.Context(), opts.channelID, args[0])
			if err != nil {
				return err
			}
			session := a.Open(cmd.Context(), target)

			out := cmd.OutOrStdout()
			if session.Limited {
				fmt.Fprintln(out, "(limited context: the conversation could not be read)")
			}
			for _, m := range session.Context {
				fmt.Fprintf(out, "  %s\n", chat.FormatMessage(m))
			}
			fmt.Fprintf(out, "> %s\n", chat.FormatMessage(session.Target))
			return nil
		},
	}
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <export.json> <database>",
		Short: "Copy a JSON channel export into a SQLite message store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			export, err := store.ReadExport(args[0])
			if err != nil {
				return err
			}
			db, err := store.OpenSQLite(args[1])
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.Import(context.Background(), export)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d messages from %d channels into %s\n",
				n, len(export.Channels)+len(export.PrivateChannels), db.Path())
			return nil
		},
	}
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the completion backends",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, b := range ai.ListBackends() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s: %s\n", b.Type, b.Name, b.Description)
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}
