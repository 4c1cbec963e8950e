// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive REPL command handler.
//
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles "consigliere chat", a line-based REPL on one analysis chat. The
// streamed step progress prints as it arrives; the final answer renders as
// markdown.
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /steps              Show the steps of the last answer
//   /code               Show the python behind the last answer
//   /dossier            Show the chat's dossier again
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/morganforge/consigliere-tui/internal/api"
	"github.com/morganforge/consigliere-tui/internal/config"
	"github.com/morganforge/consigliere-tui/internal/model"
	"github.com/morganforge/consigliere-tui/internal/stream"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// replInput wraps liner with persistent input history.
// USABILITY: Supports arrow keys for history navigation and line editing.
type replInput struct {
	line        *liner.State
	historyFile string
}

func newReplInput() *replInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.Dir()
	if err != nil {
		configDir = os.TempDir()
	}
	r := &replInput{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	if f, err := os.Open(r.historyFile); err == nil {
		r.line.ReadHistory(f)
		f.Close()
	}
	return r
}

func (r *replInput) close() {
	if f, err := os.Create(r.historyFile); err == nil {
		r.line.WriteHistory(f)
		f.Close()
	}
	r.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// RunChat starts the interactive REPL on a chat.
func RunChat(args Args) {
	if args.ChatID == "" {
		fatalf("chat needs a target; list chats with: consigliere chats")
	}

	client, err := requireLogin(args)
	if err != nil {
		fatalf("%v", err)
	}

	ctx := context.Background()
	transcript := model.NewTranscript(args.ChatID)
	engine := stream.NewEngine(client)

	printChatBanner(ctx, client, args.ChatID)

	input := newReplInput()
	defer input.close()

	for {
		text, err := input.line.Prompt(promptStyle.Render("❯ "))
		if err != nil {
			// liner.ErrPromptAborted on ctrl+c, io.EOF on ctrl+d.
			fmt.Println()
			return
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		input.line.AppendHistory(text)

		if strings.HasPrefix(text, "/") {
			if !handleReplCommand(ctx, client, args.ChatID, text, transcript) {
				return
			}
			continue
		}

		runStreamingTurn(ctx, engine, transcript, args.ChatID, text)
	}
}

// runStreamingTurn sends one question and prints progress as the stream
// advances.
func runStreamingTurn(ctx context.Context, engine *stream.Engine, transcript *model.Transcript, chatID, text string) {
	lastStep := -1
	notify := func() {
		id := transcript.PendingID()
		if id == "" {
			return
		}
		msg := transcript.Get(id)
		if msg == nil || msg.CurrentStep == lastStep {
			return
		}
		lastStep = msg.CurrentStep
		if msg.State == model.StateAwaitingPlan {
			fmt.Println(stepStyle.Render("  ◌ planning…"))
			return
		}
		fmt.Println(stepStyle.Render(fmt.Sprintf("  ⚡ step %d: %s", msg.CurrentStep, msg.Content)))
	}

	if err := engine.Run(ctx, transcript, chatID, text, notify); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("stream failed: %v", err)))
		return
	}

	if msg := transcript.Last(); msg != nil && msg.Role == model.RoleAssistant {
		fmt.Println()
		displayResponse(msg.Content)
		if msg.HasSteps() {
			fmt.Println(infoStyle.Render(fmt.Sprintf("(%d steps — /steps to inspect)", len(msg.Steps))))
		}
	}
}

// handleReplCommand executes a slash command. Returns false to exit.
func handleReplCommand(ctx context.Context, client *api.Client, chatID, text string, transcript *model.Transcript) bool {
	switch strings.Fields(text)[0] {
	case "/quit", "/q", "/exit":
		return false
	case "/help", "/h":
		fmt.Println(infoStyle.Render(`commands:
  /steps     steps behind the last answer
  /code      python behind the last answer
  /dossier   show the chat's dossier again
  /quit      exit`))
	case "/dossier":
		d, err := client.Dossier(ctx, chatID)
		if err != nil || d == nil {
			fmt.Println(infoStyle.Render("no dossier for this chat"))
			return true
		}
		printDossier(d)
	case "/steps":
		id := transcript.LastAssistantWithSteps()
		if id == "" {
			fmt.Println(infoStyle.Render("no steps yet"))
			return true
		}
		printStepSummary(transcript.Get(id))
	case "/code":
		msg := transcript.Get(transcript.LastAssistantWithSteps())
		if msg == nil || msg.RelatedCode == nil {
			fmt.Println(infoStyle.Render("no code for the last answer"))
			return true
		}
		displayResponse("```python\n" + msg.RelatedCode.Code + "\n```")
	default:
		fmt.Println(infoStyle.Render("unknown command; /help lists commands"))
	}
	return true
}

// printChatBanner shows the chat title and dossier briefing on entry.
func printChatBanner(ctx context.Context, client *api.Client, chatID string) {
	fmt.Println(headerStyle.Render("⬖ consigliere chat"))

	d, err := client.Dossier(ctx, chatID)
	if err != nil || d == nil {
		fmt.Println(infoStyle.Render("chat " + chatID))
		return
	}
	displayResponse(d.Briefing)
	if len(d.RecommendedActions) > 0 {
		fmt.Println(infoStyle.Render("suggested questions:"))
		for i, a := range d.RecommendedActions {
			fmt.Printf("  %d. %s\n", i+1, a)
		}
	}
}
