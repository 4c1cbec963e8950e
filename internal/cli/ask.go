// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler.
//
// Handles "consigliere ask", which sends one question to a chat and waits
// for the complete answer instead of consuming the event stream.
//
// Examples:
//   consigliere ask --chat 42 "Which region grew fastest?"
//   consigliere ask --chat 42 --json "Top ten customers by revenue"
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/morganforge/consigliere-tui/internal/model"
)

// askTimeout bounds a full analysis round trip. Multi-step analyses run
// python per step, so this is much longer than the REST default.
const askTimeout = 5 * time.Minute

// RunAsk sends a one-shot question and prints the answer.
func RunAsk(args Args) {
	if args.Query == "" {
		fatalf("usage: consigliere ask --chat ID \"question\"")
	}
	if args.ChatID == "" {
		fatalf("ask needs a target chat; list them with: consigliere chats")
	}

	client, err := requireLogin(args)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	record, err := client.AnalyzeClient().Ask(ctx, args.ChatID, args.Query)
	if err != nil {
		fatalf("ask failed: %v", err)
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(record); err != nil {
			fatalf("encode: %v", err)
		}
		return
	}

	msg := record.ToMessage()
	displayResponse(msg.Content)
	printStepSummary(msg)
}

// printStepSummary lists the analysis steps behind an answer, one line each.
func printStepSummary(msg *model.Message) {
	if msg == nil || !msg.HasSteps() {
		return
	}
	fmt.Println(infoStyle.Render(fmt.Sprintf("%d analysis steps:", len(msg.Steps))))
	for _, s := range msg.Steps {
		marker := "·"
		if s.Kind == model.StepKindError {
			marker = "✗"
		}
		fmt.Println(stepStyle.Render(fmt.Sprintf("  %s step %d (%s): %s",
			marker, s.StepNumber, s.Kind, s.Description)))
	}
}
