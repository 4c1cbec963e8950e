// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// upload.go - Upload and database-connect command handlers.
//
// Both commands end the same way: a new chat with a dossier. Upload pushes
// a spreadsheet through the two-phase upload/analyze flow; connect
// registers a PostgreSQL source.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/morganforge/consigliere-tui/internal/api"
	"github.com/morganforge/consigliere-tui/internal/model"
)

// analyzeTimeout bounds dossier generation, which reads the whole file.
const analyzeTimeout = 5 * time.Minute

// RunUpload uploads a spreadsheet, waits for the dossier, and prints it.
func RunUpload(args Args) {
	if args.File == "" {
		fatalf("usage: consigliere upload FILE")
	}
	if _, err := os.Stat(args.File); err != nil {
		fatalf("cannot read %s: %v", args.File, err)
	}

	client, err := requireLogin(args)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	fmt.Println(infoStyle.Render("uploading " + args.File + "…"))
	up, err := client.UploadFile(ctx, args.File)
	if err != nil {
		fatalf("upload failed: %v", err)
	}

	fmt.Println(infoStyle.Render("analyzing " + up.Filename + "…"))
	res, err := client.AnalyzeClient().Analyze(ctx, up.FileID)
	if err != nil {
		fatalf("analysis failed: %v", err)
	}

	printDossier(&res.Dossier)
	fmt.Println(infoStyle.Render("chat created: ") + res.ChatID)
	fmt.Println(infoStyle.Render("continue with: consigliere chat --chat " + res.ChatID))
}

// RunConnect prompts for connection details and registers the database.
func RunConnect(args Args) {
	client, err := requireLogin(args)
	if err != nil {
		fatalf("%v", err)
	}

	req, err := promptConnection()
	if err != nil {
		fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := client.Connect(ctx, req)
	if err != nil {
		fatalf("connection failed: %v", err)
	}
	fmt.Println(infoStyle.Render("connected: ") + res.Database + " @ " + res.Host)
	fmt.Println(infoStyle.Render("list chats with: consigliere chats"))
}

func promptConnection() (api.ConnectionRequest, error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	ask := func(label, fallback string) (string, error) {
		v, err := line.Prompt(label + ": ")
		if err != nil {
			return "", fmt.Errorf("aborted")
		}
		v = strings.TrimSpace(v)
		if v == "" {
			v = fallback
		}
		return v, nil
	}

	req := api.ConnectionRequest{DriverName: "postgresql"}
	var err error
	if req.Name, err = ask("Connection name", "database"); err != nil {
		return req, err
	}
	if req.Host, err = ask("Host (localhost)", "localhost"); err != nil {
		return req, err
	}
	port, err := ask("Port (5432)", "5432")
	if err != nil {
		return req, err
	}
	req.Port, err = strconv.Atoi(port)
	if err != nil {
		return req, fmt.Errorf("port must be a number")
	}
	if req.Database, err = ask("Database", ""); err != nil {
		return req, err
	}
	if req.Database == "" {
		return req, fmt.Errorf("database name is required")
	}
	if req.Username, err = ask("Username", ""); err != nil {
		return req, err
	}
	pw, err := line.PasswordPrompt("Password: ")
	if err != nil {
		return req, fmt.Errorf("aborted")
	}
	req.Password = pw
	return req, nil
}

// printDossier renders a dossier for plain terminal output.
func printDossier(d *model.Dossier) {
	if d == nil {
		return
	}
	fmt.Println(headerStyle.Render("⬖ DOSSIER"))
	displayResponse(d.Briefing)
	if len(d.KeyEntities) > 0 {
		fmt.Println(infoStyle.Render("key entities: ") + strings.Join(d.KeyEntities, " · "))
	}
	if len(d.RecommendedActions) > 0 {
		fmt.Println(infoStyle.Render("recommended next questions:"))
		for i, a := range d.RecommendedActions {
			fmt.Printf("  %d. %s\n", i+1, a)
		}
	}
}
