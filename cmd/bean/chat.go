package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/bean-scene/internal/cli"
	"github.com/Veraticus/bean-scene/internal/common"
	"github.com/Veraticus/bean-scene/internal/llm"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the catalog assistant about our coffees",
		Long: `Ask questions answered from the coffee catalog.

With a question argument one answer is printed; without one an
interactive session starts. Remote providers are tried in the order
of llm.providers, falling back to built-in rules when none answer.`,
		Example: `  bean chat
  bean chat "what's good with milk?"`,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	client, err := a.completionClient()
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()

	if len(args) > 0 {
		session := cli.NewChat(client, nil, out, a.settings.ContextTokens)
		result, err := session.Ask(ctx, strings.Join(args, " "))
		if err != nil {
			return common.NewUserError(llm.UserMessage(err), err)
		}
		_, err = fmt.Fprintln(out, cli.RenderReply(result.Completion, result.Model, result.Cached))
		return err
	}

	handler := cli.NewInterruptHandler(out, "Chat ended")
	ctx = handler.HandleInterrupts(ctx)

	return cli.NewChat(client, cli.NewLineReader(os.Stdin), out, a.settings.ContextTokens).Run(ctx)
}
