// FILE: internal/client/commands/lookup.go
package commands

import (
	"fmt"
	"strings"

	"eco/internal/client/api"
	"eco/internal/client/display"
)

func (r *Registry) registerLookupCommands() {
	r.Register(&Command{
		Name:        "classify",
		ShortName:   "c",
		Description: "Classify a move sequence",
		Usage:       "classify <moves>",
		Handler:     classifyHandler,
	})

	r.Register(&Command{
		Name:        "opening",
		ShortName:   "o",
		Description: "Look up openings by ECO code",
		Usage:       "opening <code>",
		Handler:     openingHandler,
	})

	r.Register(&Command{
		Name:        "search",
		ShortName:   "s",
		Description: "Search openings by name",
		Usage:       "search <text>",
		Handler:     searchHandler,
	})

	r.Register(&Command{
		Name:        "catalog",
		ShortName:   "g",
		Description: "Show catalog summary",
		Usage:       "catalog",
		Handler:     catalogHandler,
	})
}

func classifyHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: classify <moves>")
	}

	moves := strings.Join(args, " ")
	c := s.GetClient().(*api.Client)

	resp, err := c.Classify(moves)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s%s%s  %s\n", display.Cyan, resp.ECO, display.Reset, resp.Name)

	// Highlight the matched prefix, leave the tail plain
	matched := resp.MatchedTokens
	if matched > len(resp.Tokens) {
		matched = len(resp.Tokens)
	}
	fmt.Printf("Line: %s", display.FormatMoves(resp.Tokens[:matched]))
	if matched < len(resp.Tokens) {
		fmt.Printf(" %s", strings.Join(resp.Tokens[matched:], " "))
	}
	fmt.Println()
	fmt.Printf("Matched %d of %d tokens\n", resp.MatchedTokens, len(resp.Tokens))

	return nil
}

func openingHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: opening <code>")
	}

	code := strings.ToUpper(args[0])
	c := s.GetClient().(*api.Client)

	resp, err := c.GetOpening(code)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s%d opening(s) for %s:%s\n", display.Cyan, resp.Count, code, display.Reset)
	for _, o := range resp.Openings {
		display.RenderOpening(o.ECO, o.Name, o.Moves)
	}

	return nil
}

func searchHandler(s Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: search <text>")
	}

	name := strings.Join(args, " ")
	c := s.GetClient().(*api.Client)

	resp, err := c.SearchOpenings("", name, 25)
	if err != nil {
		return err
	}

	if resp.Count == 0 {
		fmt.Printf("%sNo openings match %q%s\n", display.Yellow, name, display.Reset)
		return nil
	}

	fmt.Printf("\n%s%d opening(s) matching %q:%s\n", display.Cyan, resp.Count, name, display.Reset)
	for _, o := range resp.Openings {
		display.RenderOpening(o.ECO, o.Name, o.Moves)
	}
	if resp.Count == 25 {
		fmt.Printf("%sShowing first 25 matches, narrow the search for more%s\n", display.Yellow, display.Reset)
	}

	return nil
}

func catalogHandler(s Session, args []string) error {
	c := s.GetClient().(*api.Client)

	resp, err := c.GetCatalog()
	if err != nil {
		return err
	}

	fmt.Printf("\n%sCatalog:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  Entries: %d\n", resp.Entries)
	fmt.Printf("  Codes:   %d\n", resp.Codes)
	fmt.Printf("  Source:  %s\n", resp.Source)

	if resp.LastRefresh != nil {
		run := resp.LastRefresh
		fmt.Printf("\n%sLast refresh:%s\n", display.Cyan, display.Reset)
		fmt.Printf("  Run:      %s\n", run.RunID)
		fmt.Printf("  State:    %s\n", display.ColorForState(run.State))
		fmt.Printf("  Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
		if run.FinishedAt != nil {
			fmt.Printf("  Finished: %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("  Pages:    %d fetched, %d failed\n", run.PagesFetched, run.PagesFailed)
		fmt.Printf("  Entries:  %d\n", run.EntryCount)
	}

	return nil
}
