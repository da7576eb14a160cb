package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/avikajoshi/portfolio/backend/internal/model/chat"
	"github.com/avikajoshi/portfolio/backend/internal/model/knowledge"
	"github.com/avikajoshi/portfolio/backend/internal/service/responder"
	"github.com/avikajoshi/portfolio/backend/internal/service/transcript"
)

type rootOptions struct {
	knowledgePath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "askbot",
		Short:        "Talk to the portfolio assistant without running the server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.knowledgePath, "knowledge", os.Getenv("KNOWLEDGE_BASE_FILE"), "YAML knowledge base (defaults to the embedded seed)")

	root.AddCommand(newAskCmd(opts), newChatCmd(opts), newKnowledgeCmd(opts))
	return root
}

func (o *rootOptions) store() (*knowledge.MemoryStore, error) {
	base, err := knowledge.Load(o.knowledgePath)
	if err != nil {
		return nil, err
	}
	return knowledge.NewMemoryStore(base), nil
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Print the reply for a single message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := opts.store()
			if err != nil {
				return err
			}
			r, err := responder.New(cmd.Context(), kb)
			if err != nil {
				return err
			}
			res := r.Respond(cmd.Context(), responder.Request{Text: strings.Join(args, " ")})
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printReply(cmd.OutOrStdout(), string(res.Topic), res.Reply)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var exportPath string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Hold a conversation on stdin; an empty line or EOF ends it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kb, err := opts.store()
			if err != nil {
				return err
			}
			r, err := responder.New(cmd.Context(), kb)
			if err != nil {
				return err
			}
			state, err := converse(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), r)
			if err != nil {
				return err
			}
			if exportPath == "" {
				return nil
			}
			f, err := os.Create(exportPath)
			if err != nil {
				return fmt.Errorf("create transcript: %w", err)
			}
			defer f.Close()
			if err := transcript.Write(f, state.Messages); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transcript written to %s\n", exportPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&exportPath, "export", "o", "", "write the transcript to this file on exit (e.g. "+transcript.Filename+")")
	return cmd
}

// converse drives the reducer the same way the chat service does, minus the typing delay.
func converse(ctx context.Context, in io.Reader, out io.Writer, r *responder.Responder) (chat.State, error) {
	state, err := chat.Reduce(chat.NewState(uuid.NewString()), chat.Open{})
	if err != nil {
		return state, err
	}
	greeting := r.Greeting()
	state, err = chat.Reduce(state, chat.Greet{MessageID: uuid.NewString(), Reply: greeting, At: time.Now()})
	if err != nil {
		return state, err
	}
	printReply(out, "greeting", greeting)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			break
		}

		prior := state.VisitorTurns
		state, err = chat.Reduce(state, chat.Submit{MessageID: uuid.NewString(), Text: text, At: time.Now()})
		if err != nil {
			return state, err
		}
		res := r.Respond(ctx, responder.Request{Text: text, Context: state.Context, PriorVisitorTurns: prior})
		state, err = chat.Reduce(state, chat.Respond{MessageID: uuid.NewString(), Reply: res.Reply, Context: res.Context, At: time.Now()})
		if err != nil {
			return state, err
		}
		printReply(out, string(res.Topic), res.Reply)
	}
	fmt.Fprintln(out)
	return state, scanner.Err()
}

func newKnowledgeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "knowledge [topic]",
		Short: "Dump the knowledge base, or one topic of it, as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := opts.store()
			if err != nil {
				return err
			}
			var payload any = kb.Topics()
			if len(args) == 1 {
				topic, ok := kb.Topic(args[0])
				if !ok {
					return fmt.Errorf("unknown topic %q (have %s)", args[0], strings.Join(kb.Topics(), ", "))
				}
				payload = topic
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}
}

func printReply(w io.Writer, topic string, r chat.Reply) {
	fmt.Fprintf(w, "[%s]\n%s\n", topic, r.Text)
	if len(r.QuickReplies) > 0 {
		fmt.Fprintf(w, "  quick replies: %s\n", strings.Join(r.QuickReplies, " | "))
	}
	for _, a := range r.Actions {
		fmt.Fprintf(w, "  action: %s (%s)\n", a.Label, a.Action)
	}
}
