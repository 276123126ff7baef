// FILE: internal/client/commands/admin.go
package commands

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"eco/internal/client/api"
	"eco/internal/client/display"

	"golang.org/x/term"
)

func (r *Registry) registerAdminCommands() {
	r.Register(&Command{
		Name:        "login",
		ShortName:   "l",
		Description: "Login with admin credentials",
		Usage:       "login [name]",
		Handler:     loginHandler,
	})

	r.Register(&Command{
		Name:        "logout",
		ShortName:   "u",
		Description: "Clear authentication",
		Usage:       "logout",
		Handler:     logoutHandler,
	})

	r.Register(&Command{
		Name:        "whoami",
		ShortName:   "i",
		Description: "Show current admin session",
		Usage:       "whoami",
		Handler:     whoamiHandler,
	})

	r.Register(&Command{
		Name:        "refresh",
		ShortName:   "r",
		Description: "Start a catalog refresh run",
		Usage:       "refresh",
		Handler:     refreshHandler,
	})

	r.Register(&Command{
		Name:        "run",
		ShortName:   "n",
		Description: "Show refresh run status",
		Usage:       "run [runId]",
		Handler:     runHandler,
	})

	r.Register(&Command{
		Name:        "log",
		ShortName:   "f",
		Description: "Show per-page fetch log for a run",
		Usage:       "log [runId] [limit]",
		Handler:     logHandler,
	})
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	byteSecret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(byteSecret), nil
}

func loginHandler(s Session, args []string) error {
	c := s.GetClient().(*api.Client)

	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print(display.Yellow + "Admin name: " + display.Reset)
		scanner.Scan()
		name = strings.TrimSpace(scanner.Text())
	}
	if name == "" {
		return fmt.Errorf("admin name is required")
	}

	secret, err := readPassword(display.Yellow + "Secret: " + display.Reset)
	if err != nil {
		return err
	}

	resp, err := c.Login(name, secret)
	if err != nil {
		return err
	}

	s.SetAuthToken(resp.Token)
	s.SetAdminID(resp.AdminID)
	s.SetAdminName(resp.Name)
	s.SetTokenExpiry(resp.ExpiresAt)
	c.SetToken(resp.Token)

	fmt.Printf("%sLogged in successfully%s\n", display.Green, display.Reset)
	fmt.Printf("Admin: %s\n", resp.Name)
	fmt.Printf("Token expires: %s\n", resp.ExpiresAt.Format("2006-01-02 15:04:05"))

	return nil
}

func logoutHandler(s Session, args []string) error {
	s.SetAuthToken("")
	s.SetAdminID("")
	s.SetAdminName("")
	s.SetTokenExpiry(time.Time{})
	c := s.GetClient().(*api.Client)
	c.SetToken("")

	fmt.Printf("%sLogged out%s\n", display.Green, display.Reset)
	return nil
}

// The API has no identity endpoint, so report what the session holds
func whoamiHandler(s Session, args []string) error {
	if s.GetAuthToken() == "" {
		fmt.Printf("%sNot authenticated%s\n", display.Yellow, display.Reset)
		return nil
	}

	fmt.Printf("%sCurrent Admin:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  Admin ID: %s\n", s.GetAdminID())
	fmt.Printf("  Name:     %s\n", s.GetAdminName())

	expiry := s.GetTokenExpiry()
	if !expiry.IsZero() {
		fmt.Printf("  Expires:  %s", expiry.Format("2006-01-02 15:04:05"))
		remaining := time.Until(expiry)
		if remaining > 0 {
			fmt.Printf(" (%s left)\n", remaining.Round(time.Minute))
		} else {
			fmt.Printf(" %s(expired)%s\n", display.Red, display.Reset)
		}
	}

	return nil
}

func refreshHandler(s Session, args []string) error {
	c := s.GetClient().(*api.Client)

	resp, err := c.StartRefresh()
	if err != nil {
		return err
	}

	s.SetLastRunID(resp.RunID)

	fmt.Printf("%sRefresh accepted%s\n", display.Green, display.Reset)
	fmt.Printf("Run:   %s\n", resp.RunID)
	fmt.Printf("State: %s\n", display.ColorForState(resp.State))
	fmt.Printf("Use 'run' to poll progress\n")

	return nil
}

func runHandler(s Session, args []string) error {
	runID := s.GetLastRunID()
	if len(args) > 0 {
		runID = args[0]
	}
	if runID == "" {
		return fmt.Errorf("specify run ID or start a refresh first")
	}

	c := s.GetClient().(*api.Client)
	resp, err := c.GetRun(runID)
	if err != nil {
		return err
	}

	s.SetLastRunID(resp.RunID)
	printRun(resp)

	return nil
}

func logHandler(s Session, args []string) error {
	runID := s.GetLastRunID()
	if len(args) > 0 {
		runID = args[0]
	}
	if runID == "" {
		return fmt.Errorf("specify run ID or start a refresh first")
	}

	limit := 0
	if len(args) > 1 {
		var err error
		limit, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid limit: %s", args[1])
		}
	}

	c := s.GetClient().(*api.Client)
	resp, err := c.GetFetchLog(runID, limit)
	if err != nil {
		return err
	}

	fmt.Printf("\n%sFetch log for run %s: %d page(s)%s\n", display.Cyan, resp.RunID, resp.Count, display.Reset)

	failed := 0
	for _, page := range resp.Pages {
		statusColor := display.Green
		if page.Status != "ok" {
			statusColor = display.Red
			failed++
		}
		fmt.Printf("  %s%s%s  %s%-6s%s %d attempt(s)  %d entries",
			display.Cyan, page.Code, display.Reset,
			statusColor, page.Status, display.Reset,
			page.Attempts, page.Entries)
		if page.Error != "" {
			fmt.Printf("  %s%s%s", display.Red, page.Error, display.Reset)
		}
		fmt.Println()
	}

	if failed > 0 {
		fmt.Printf("%s%d page(s) failed%s\n", display.Red, failed, display.Reset)
	}

	return nil
}

func printRun(run *api.RunResponse) {
	fmt.Printf("\n%sRefresh Run:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  Run:      %s\n", run.RunID)
	fmt.Printf("  State:    %s\n", display.ColorForState(run.State))
	fmt.Printf("  Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Printf("  Finished: %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  Pages:    %d fetched, %d failed\n", run.PagesFetched, run.PagesFailed)
	fmt.Printf("  Entries:  %d\n", run.EntryCount)
	if run.Error != "" {
		fmt.Printf("  Error:    %s%s%s\n", display.Red, run.Error, display.Reset)
	}
}
