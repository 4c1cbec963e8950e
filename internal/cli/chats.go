// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chats.go - Chat listing command handler.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/morganforge/consigliere-tui/internal/util"
)

// RunChats lists the user's analysis chats, newest first.
func RunChats(args Args) {
	client, err := requireLogin(args)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chats, err := client.ListChats(ctx)
	if err != nil {
		fatalf("could not list chats: %v", err)
	}

	if args.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(chats); err != nil {
			fatalf("encode: %v", err)
		}
		return
	}

	if len(chats) == 0 {
		fmt.Println(infoStyle.Render("no chats yet — upload a file to start"))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-38s %-6s %-10s %s", "ID", "TYPE", "CREATED", "TITLE")))
	for _, c := range chats {
		fmt.Printf("%-38s %-6s %-10s %s\n",
			c.ID, c.Type, util.RelativeTime(c.CreatedAt),
			util.TruncateWidth(c.DisplayTitle(), 48))
	}
}
