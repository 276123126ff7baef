// FILE: cmd/eco-client/main.go
// Package main implements an interactive debugging client for the ECO server API.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"eco/internal/client/api"
	"eco/internal/client/commands"
	"eco/internal/client/display"
	"eco/internal/client/session"

	"github.com/chzyer/readline"
)

func main() {
	s := &session.Session{
		APIBaseURL: "http://localhost:8080",
		Client:     api.New("http://localhost:8080"),
		Verbose:    false,
	}

	// Initialize readline
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("eco"),
		HistoryFile:     ".eco_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sECO Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		// Build enhanced prompt
		prompt := buildPrompt(s)
		rl.SetPrompt(prompt)

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		// Check for verbose flag
		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		registry.Execute(line)
	}
}

func buildPrompt(s *session.Session) string {
	parts := []string{}

	// Base
	base := "eco"

	// Add admin/run context
	if s.AdminName != "" {
		parts = append(parts, fmt.Sprintf("%s%s%s", display.Magenta, s.AdminName, display.Reset))
	}
	if s.AdminName != "" && s.LastRunID != "" {
		parts = append(parts, fmt.Sprintf("%s - %s", display.Yellow, display.Reset))
	}
	if s.LastRunID != "" {
		runID := s.LastRunID
		if len(runID) > 8 {
			runID = runID[:8]
		}
		parts = append(parts, fmt.Sprintf("%s%s%s", display.White, runID, display.Reset))
	}

	// Build first part
	promptStr := base
	if len(parts) > 0 {
		promptStr += display.Yellow + " [" + display.Reset + strings.Join(parts, "") + display.Yellow + "]"
	}

	// Flag an expired token so admin commands fail predictably
	if s.AuthToken != "" && !s.TokenExpiry.IsZero() && time.Now().After(s.TokenExpiry) {
		promptStr += display.Red + " (token expired)" + display.Reset
	}

	return display.Prompt(promptStr)
}
