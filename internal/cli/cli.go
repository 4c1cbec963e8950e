// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for consigliere.
//
// CLI: Comprehensive help and examples for all commands
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdRegister
	CmdLogout
	CmdChats
	CmdAsk
	CmdChat
	CmdUpload
	CmdConnect
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Verbose bool
	Quiet   bool
	Server  string // Override server URL for this invocation
	JSON    bool   // Output in JSON format where supported

	// Command-specific
	Query      string // ask: the question text
	ChatID     string // ask/chat: target chat id
	File       string // upload: spreadsheet path
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `consigliere - terminal client for conversational data analysis

Consigliere talks to a data-analysis backend: upload a spreadsheet or
connect a database, read the generated dossier, then interrogate the
data in plain language. Answers arrive as text, tables, and charts
produced by analysis steps you can inspect.

Usage:
  consigliere                      Start the dashboard TUI (default)
  consigliere login                Sign in and store the session token
  consigliere register             Create an account
  consigliere logout               Forget the stored session token
  consigliere chats                List your analysis chats
  consigliere ask "question"       One-shot question (requires --chat)
  consigliere chat                 Interactive REPL on a chat
  consigliere upload FILE          Upload a spreadsheet and print its dossier
  consigliere connect              Connect a PostgreSQL database
  consigliere config [show|set]    Configuration
  consigliere version              Show version
  consigliere help                 Show this help

Flags:
  --chat ID        Target chat for ask/chat
  --server URL     Override the backend URL for this run
  --json           Machine-readable output (chats, ask)
  -v, --verbose    Verbose logging
  -q, --quiet      Minimal output

Examples:
  consigliere upload sales_q3.xlsx
  consigliere ask --chat 42 "Which region grew fastest?"
  consigliere chat --chat 42
  consigliere config set server.url https://analyst.example.com
`

// Parse parses os.Args style arguments into a Command and Args.
func Parse(argv []string) (Command, Args) {
	args := Args{}
	cmd := CmdTUI

	rest := make([]string, 0, len(argv))
	i := 0
	for i < len(argv) {
		a := argv[i]
		switch {
		case a == "-v" || a == "--verbose":
			args.Verbose = true
		case a == "-q" || a == "--quiet":
			args.Quiet = true
		case a == "--json":
			args.JSON = true
		case a == "--chat":
			if i+1 < len(argv) {
				i++
				args.ChatID = argv[i]
			}
		case strings.HasPrefix(a, "--chat="):
			args.ChatID = strings.TrimPrefix(a, "--chat=")
		case a == "--server":
			if i+1 < len(argv) {
				i++
				args.Server = argv[i]
			}
		case strings.HasPrefix(a, "--server="):
			args.Server = strings.TrimPrefix(a, "--server=")
		default:
			rest = append(rest, a)
		}
		i++
	}

	if len(rest) == 0 {
		return cmd, args
	}

	switch rest[0] {
	case "login":
		cmd = CmdLogin
	case "register":
		cmd = CmdRegister
	case "logout":
		cmd = CmdLogout
	case "chats", "ls":
		cmd = CmdChats
	case "ask":
		cmd = CmdAsk
		args.Query = strings.Join(rest[1:], " ")
	case "chat":
		cmd = CmdChat
	case "upload":
		cmd = CmdUpload
		if len(rest) > 1 {
			args.File = rest[1]
		}
	case "connect":
		cmd = CmdConnect
	case "config":
		cmd = CmdConfig
		if len(rest) > 1 {
			args.Subcommand = rest[1]
		}
		if len(rest) > 3 && args.Subcommand == "set" {
			args.ConfigKey = rest[2]
			args.ConfigVal = rest[3]
		}
	case "version", "-V", "--version":
		cmd = CmdVersion
	case "help", "-h", "--help":
		cmd = CmdHelp
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", rest[0])
		cmd = CmdHelp
	}
	args.Raw = rest
	return cmd, args
}

// PrintUsage writes the top-level help text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion writes version information.
func PrintVersion() {
	fmt.Printf("consigliere %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}
