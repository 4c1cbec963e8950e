// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth.go - Login, register, and logout command handlers.
//
// The session token is stored in the config file so the TUI and later CLI
// invocations reuse it.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/morganforge/consigliere-tui/internal/api"
	"github.com/morganforge/consigliere-tui/internal/config"
)

// RunLogin signs in and stores the session token.
func RunLogin(args Args) {
	email, password, err := promptCredentials(false)
	if err != nil {
		fatalf("%v", err)
	}

	client := newClient(args)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	auth, err := client.Login(ctx, email, password)
	if err != nil {
		fatalf("login failed: %v", err)
	}

	cfg := config.Global()
	cfg.Session.Email = email
	cfg.Session.Token = auth.AccessToken
	if args.Server != "" {
		cfg.Server.BaseURL = args.Server
	}
	if err := config.Save(cfg); err != nil {
		fatalf("could not store session: %v", err)
	}
	fmt.Println(infoStyle.Render("logged in as ") + email)
}

// RunRegister creates an account, then logs in with the same credentials.
func RunRegister(args Args) {
	email, password, err := promptCredentials(true)
	if err != nil {
		fatalf("%v", err)
	}

	line := liner.NewLiner()
	fullName, _ := line.Prompt("Full name: ")
	line.Close()

	client := newClient(args)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := api.RegisterRequest{
		Email:    email,
		Password: password,
		FullName: strings.TrimSpace(fullName),
	}
	if _, err := client.Register(ctx, req); err != nil {
		fatalf("registration failed: %v", err)
	}
	fmt.Println(infoStyle.Render("account created"))

	auth, err := client.Login(ctx, email, password)
	if err != nil {
		fatalf("account created but login failed: %v", err)
	}

	cfg := config.Global()
	cfg.Session.Email = email
	cfg.Session.Token = auth.AccessToken
	if err := config.Save(cfg); err != nil {
		fatalf("could not store session: %v", err)
	}
	fmt.Println(infoStyle.Render("logged in as ") + email)
}

// RunLogout forgets the stored token.
func RunLogout(args Args) {
	cfg := config.Global()
	if cfg.Session.Token == "" {
		fmt.Println(infoStyle.Render("not logged in"))
		return
	}
	cfg.Session.Token = ""
	if err := config.Save(cfg); err != nil {
		fatalf("could not update config: %v", err)
	}
	fmt.Println(infoStyle.Render("logged out"))
}

// promptCredentials reads email and password. confirm asks for the password
// twice, for registration.
func promptCredentials(confirm bool) (email, password string, err error) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	email, err = line.Prompt("Email: ")
	if err != nil {
		return "", "", fmt.Errorf("aborted")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return "", "", fmt.Errorf("email is required")
	}

	password, err = line.PasswordPrompt("Password: ")
	if err != nil {
		return "", "", fmt.Errorf("aborted")
	}
	if password == "" {
		return "", "", fmt.Errorf("password is required")
	}

	if confirm {
		again, err := line.PasswordPrompt("Confirm password: ")
		if err != nil {
			return "", "", fmt.Errorf("aborted")
		}
		if again != password {
			return "", "", fmt.Errorf("passwords do not match")
		}
	}
	return email, password, nil
}
