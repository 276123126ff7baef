package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"eco/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
	"golang.org/x/term"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, admin")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		return runQuery(args[1:])
	case "admin":
		if len(args) < 2 {
			return fmt.Errorf("admin subcommand required: add, delete, set-secret, list")
		}
		return runAdmin(args[1], args[2:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	confirm := fs.Bool("confirm", false, "Confirm deletion (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}
	if !*confirm {
		return fmt.Errorf("refusing to delete %s without -confirm", *path)
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Printf("Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	code := fs.String("code", "", "ECO code to filter (optional)")
	runID := fs.String("run", "", "Refresh run ID, shows the run and its fetch log (optional)")
	runs := fs.Bool("runs", false, "List recent refresh runs instead of openings")
	stats := fs.Bool("stats", false, "Print a catalog summary instead of rows")
	limit := fs.Int("limit", 0, "Maximum rows to return (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if *stats {
		return queryStats(store)
	}
	if *runID != "" {
		return queryRun(store, *runID, *limit)
	}
	if *runs {
		return queryRuns(store, *limit)
	}
	return queryOpenings(store, *code, *limit)
}

func queryStats(store *storage.Store) error {
	openings, err := store.CountOpenings()
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	codes, err := store.CountCodes()
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Printf("Openings: %d\n", openings)
	fmt.Printf("Codes:    %d\n", codes)

	if run, err := store.LatestCompletedRun(); err == nil && run != nil {
		fmt.Printf("Last refresh: %s (%s..., %d entries)\n",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.RunID[:8], run.EntryCount)
	}
	return nil
}

func queryOpenings(store *storage.Store, code string, limit int) error {
	openings, err := store.QueryOpenings(strings.ToUpper(code), "", limit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(openings) == 0 {
		fmt.Println("No openings found")
		return nil
	}

	// Print results in tabular format
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Code\tName\tTokens\tMoves")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, o := range openings {
		name := o.Name
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		moves := o.Moves
		if len(moves) > 30 {
			moves = moves[:27] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", o.Code, name, o.TokenCount, moves)
	}
	w.Flush()

	fmt.Printf("\nFound %d opening(s)\n", len(openings))
	return nil
}

func queryRuns(store *storage.Store, limit int) error {
	runs, err := store.GetRuns(limit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No refresh runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Run ID\tState\tStarted\tFinished\tFetched\tFailed\tEntries")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range runs {
		finished := "-"
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s...\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.RunID[:8],
			r.State,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			finished,
			r.PagesFetched,
			r.PagesFailed,
			r.EntryCount,
		)
	}
	w.Flush()

	fmt.Printf("\nFound %d run(s)\n", len(runs))
	return nil
}

func queryRun(store *storage.Store, runID string, limit int) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return fmt.Errorf("run not found: %s", runID)
	}

	fmt.Printf("Run:     %s\n", run.RunID)
	fmt.Printf("State:   %s\n", run.State)
	fmt.Printf("Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Printf("Finished: %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Pages:   %d fetched, %d failed\n", run.PagesFetched, run.PagesFailed)
	fmt.Printf("Entries: %d\n", run.EntryCount)
	if run.Error != "" {
		fmt.Printf("Error:   %s\n", run.Error)
	}

	pages, err := store.GetFetchLog(runID, limit)
	if err != nil {
		return fmt.Errorf("failed to load fetch log: %w", err)
	}
	if len(pages) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Code\tStatus\tAttempts\tEntries\tError")
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, p := range pages {
		errMsg := p.Error
		if len(errMsg) > 40 {
			errMsg = errMsg[:37] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", p.Code, p.Status, p.Attempts, p.Entries, errMsg)
	}
	w.Flush()

	fmt.Printf("\n%d page(s) logged\n", len(pages))
	return nil
}

func runAdmin(subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return runAdminAdd(args)
	case "delete":
		return runAdminDelete(args)
	case "set-secret":
		return runAdminSetSecret(args)
	case "list":
		return runAdminList(args)
	default:
		return fmt.Errorf("unknown admin subcommand: %s", subcommand)
	}
}

// readSecret resolves the secret from the flag combination: -interactive
// prompts without echo, -hash takes a pre-computed PHC string verbatim,
// -secret hashes the given value
func readSecret(secret, hash string, interactive bool) (string, error) {
	if interactive {
		if secret != "" || hash != "" {
			return "", fmt.Errorf("cannot use -interactive with -secret or -hash")
		}
		fmt.Print("Enter secret: ")
		pwBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		secret = string(pwBytes)
	}

	if secret != "" && hash != "" {
		return "", fmt.Errorf("cannot specify both -secret and -hash")
	}

	if hash != "" {
		if err := auth.ValidatePHCHashFormat(hash); err != nil {
			return "", fmt.Errorf("invalid hash format: %w", err)
		}
		return hash, nil
	}

	if secret == "" {
		return "", fmt.Errorf("secret required: use -secret, -hash, or -interactive")
	}
	if len(secret) < 8 {
		return "", fmt.Errorf("secret must be at least 8 characters")
	}

	// Hash secret (Argon2)
	secretHash, err := auth.HashPassword(secret)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return secretHash, nil
}

func runAdminAdd(args []string) error {
	fs := flag.NewFlagSet("admin add", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	name := fs.String("name", "", "Admin name (required)")
	secret := fs.String("secret", "", "Secret (optional, will prompt if not provided)")
	hash := fs.String("hash", "", "Pre-computed secret hash (optional)")
	interactive := fs.Bool("interactive", false, "Interactive secret prompt")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}
	if *name == "" {
		return fmt.Errorf("admin name required")
	}

	secretHash, err := readSecret(*secret, *hash, *interactive)
	if err != nil {
		return err
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	adminID := uuid.New().String()
	record := storage.AdminRecord{
		AdminID:    adminID,
		Name:       strings.ToLower(*name),
		SecretHash: secretHash,
		CreatedAt:  time.Now().UTC(),
	}

	if err := store.CreateAdmin(record); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	fmt.Printf("Admin created successfully:\n")
	fmt.Printf("  ID: %s\n", adminID)
	fmt.Printf("  Name: %s\n", *name)
	return nil
}

func runAdminDelete(args []string) error {
	fs := flag.NewFlagSet("admin delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	name := fs.String("name", "", "Admin name to delete (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}
	if *name == "" {
		return fmt.Errorf("admin name required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	n, err := store.DeleteAdminByName(*name)
	if err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("admin not found: %s", *name)
	}

	fmt.Printf("Admin deleted: %s\n", *name)
	return nil
}

func runAdminSetSecret(args []string) error {
	fs := flag.NewFlagSet("admin set-secret", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	name := fs.String("name", "", "Admin name (required)")
	secret := fs.String("secret", "", "New secret")
	hash := fs.String("hash", "", "Pre-computed secret hash")
	interactive := fs.Bool("interactive", false, "Interactive secret prompt")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}
	if *name == "" {
		return fmt.Errorf("admin name required")
	}

	secretHash, err := readSecret(*secret, *hash, *interactive)
	if err != nil {
		return err
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	admin, err := store.GetAdminByName(*name)
	if err != nil {
		return fmt.Errorf("admin not found: %s", *name)
	}

	if err := store.UpdateAdminSecret(admin.AdminID, secretHash); err != nil {
		return fmt.Errorf("failed to update secret: %w", err)
	}

	fmt.Printf("Secret updated for admin: %s\n", *name)
	return nil
}

func runAdminList(args []string) error {
	fs := flag.NewFlagSet("admin list", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	admins, err := store.GetAllAdmins()
	if err != nil {
		return fmt.Errorf("failed to list admins: %w", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return nil
	}

	// Print results in tabular format
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Admin ID\tName\tCreated\tLast Login")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, a := range admins {
		lastLogin := "never"
		if a.LastLoginAt != nil {
			lastLogin = a.LastLoginAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s...\t%s\t%s\t%s\n",
			a.AdminID[:8],
			a.Name,
			a.CreatedAt.Format("2006-01-02 15:04"),
			lastLogin,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal admins: %d\n", len(admins))
	return nil
}
