package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/dsatrack/internal/catalog"
	"github.com/abhisek/dsatrack/internal/progress"
	"github.com/abhisek/dsatrack/internal/query"
	"github.com/abhisek/dsatrack/internal/spacedrep"
	"github.com/abhisek/dsatrack/internal/tracker"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List problems (optionally filtered and sorted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		filterName, _ := cmd.Flags().GetString("filter")
		sortName, _ := cmd.Flags().GetString("sort")
		seed, _ := cmd.Flags().GetUint64("seed")

		filter, err := query.ParseFilter(filterName)
		if err != nil {
			return err
		}
		sort, err := query.ParseSort(sortName)
		if err != nil {
			return err
		}

		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		tr := e.tracker

		engine := tr.Engine()
		if seed != 0 {
			engine = &query.Engine{Rand: rand.New(rand.NewPCG(seed, seed)), Tag: engine.Tag}
		}
		entries := engine.Query(tr.Catalog().Entries, tr.Store().Snapshot(), filter, sort, tr.Now())

		out := cmd.OutOrStdout()
		positions := positionIndex(tr.Catalog())

		// Header.
		fmt.Fprintf(out, "%4s  %-3s  %-7s  %-50s  %s\n", "#", "", "Level", "Title", "Review")
		fmt.Fprintln(out, strings.Repeat("─", 90))

		for _, en := range entries {
			rec := tr.Record(en.ID)
			fmt.Fprintf(out, "%4d  %-3s  %-7s  %-50s  %s\n",
				positions[en.ID], checkbox(rec.Done), en.Difficulty,
				clip(en.Title, 50), reviewLabel(rec, tr.Now()))
		}

		fmt.Fprintf(out, "\n%d of %d problems (filter %s, sort %s)\n",
			len(entries), tr.Catalog().Len(), filter, sort)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id|#>",
	Short: "Show one problem with its progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		en, err := e.tracker.Resolve(args[0])
		if err != nil {
			return err
		}
		printEntry(cmd.OutOrStdout(), e.tracker, en)
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id|#>",
	Short: "Mark a problem solved and rate how it went",
	Long: "Mark a problem solved. With --rating the review is scheduled\n" +
		"(Again: none, Hard: 2 days, Good: 4 days, Easy: 7 days).",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ratingName, _ := cmd.Flags().GetString("rating")

		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		en, err := e.tracker.Resolve(args[0])
		if err != nil {
			return err
		}
		if ratingName == "" {
			if err := e.tracker.SetDone(ctxOf(cmd), en.ID, true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Solved: %s\n", en.Title)
			return nil
		}
		return applyRating(cmd, e.tracker, en, ratingName)
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <id|#>",
	Short: "Mark a problem unsolved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		en, err := e.tracker.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := e.tracker.SetDone(ctxOf(cmd), en.ID, false); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unsolved: %s\n", en.Title)
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <id|#> <again|hard|good|easy>",
	Short: "Record a review and schedule the next one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		en, err := e.tracker.Resolve(args[0])
		if err != nil {
			return err
		}
		return applyRating(cmd, e.tracker, en, args[1])
	},
}

var noteCmd = &cobra.Command{
	Use:   "note <id|#> [text...]",
	Short: "Set or clear the notes of a problem",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clearNotes, _ := cmd.Flags().GetBool("clear")
		text := strings.TrimSpace(strings.Join(args[1:], " "))
		if text == "" && !clearNotes {
			return fmt.Errorf("give the note text, or --clear to remove notes")
		}

		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		en, err := e.tracker.Resolve(args[0])
		if err != nil {
			return err
		}
		if err := e.tracker.SetNotes(ctxOf(cmd), en.ID, text); err != nil {
			return err
		}
		if text == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared notes: %s\n", en.Title)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved notes: %s\n", en.Title)
		}
		return nil
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Pick a random unsolved problem",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openTracker(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		en, ok := e.tracker.RandomUnsolved()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "All problems solved!")
			return nil
		}
		printEntry(cmd.OutOrStdout(), e.tracker, en)
		return nil
	},
}

func init() {
	listCmd.Flags().String("filter", "all", "Filter: all, due, todo, done, notes, tagged")
	listCmd.Flags().String("sort", "default", "Sort: default, easy, hard, random")
	listCmd.Flags().Uint64("seed", 0, "Seed for --sort random (0 picks a fresh order)")

	doneCmd.Flags().String("rating", "", "Also record a review: again, hard, good or easy")

	noteCmd.Flags().Bool("clear", false, "Remove the notes")
}

// applyRating commits a review through the rating prompt.
func applyRating(cmd *cobra.Command, tr *tracker.Tracker, en catalog.Entry, ratingName string) error {
	r, err := spacedrep.ParseRating(ratingName)
	if err != nil {
		return err
	}
	rec, err := tr.BeginReview(en.ID).Commit(ctxOf(cmd), r)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if rec.Interval > 0 {
		fmt.Fprintf(out, "Rated %s: %s. Next review in %d days (%s).\n",
			r, en.Title, rec.Interval, time.UnixMilli(*rec.NextReview).Format("Jan 02"))
	} else {
		fmt.Fprintf(out, "Rated %s: %s. No review scheduled.\n", r, en.Title)
	}
	return nil
}

func printEntry(out io.Writer, tr *tracker.Tracker, en catalog.Entry) {
	rec := tr.Record(en.ID)
	positions := positionIndex(tr.Catalog())

	fmt.Fprintf(out, "#%d  %s\n", positions[en.ID], en.Title)
	fmt.Fprintf(out, "  ID:         %s\n", en.ID)
	fmt.Fprintf(out, "  Difficulty: %s\n", en.Difficulty)
	if en.ReferenceURL != "" {
		fmt.Fprintf(out, "  Link:       %s\n", en.ReferenceURL)
	}
	if en.SectionID != "" {
		fmt.Fprintf(out, "  Section:    %s\n", sectionTitle(tr.Catalog(), en.SectionID))
	}
	if len(en.Tags) > 0 {
		fmt.Fprintf(out, "  Tags:       %s\n", strings.Join(en.Tags, ", "))
	}
	fmt.Fprintf(out, "  Solved:     %s\n", yesNo(rec.Done))
	if rec.LastReview != nil {
		fmt.Fprintf(out, "  Reviewed:   %s\n", time.UnixMilli(*rec.LastReview).Format("Jan 02, 2006"))
	}
	if label := reviewLabel(rec, tr.Now()); label != "" {
		fmt.Fprintf(out, "  Review:     %s\n", label)
	}
	if rec.HasNotes() {
		fmt.Fprintf(out, "  Notes:      %s\n", rec.Notes)
	}
}

// positionIndex maps entry IDs to their 1-based catalog position.
func positionIndex(c *catalog.Catalog) map[string]int {
	idx := make(map[string]int, c.Len())
	for i, e := range c.Entries {
		if _, ok := idx[e.ID]; !ok {
			idx[e.ID] = i + 1
		}
	}
	return idx
}

func sectionTitle(c *catalog.Catalog, id string) string {
	for _, s := range c.Sections {
		if s.ID == id {
			return s.Title
		}
	}
	return id
}

func reviewLabel(rec progress.Record, now time.Time) string {
	switch spacedrep.Status(rec, now) {
	case spacedrep.ReviewDue:
		return "due"
	case spacedrep.ReviewScheduled:
		return "in " + strconv.Itoa(spacedrep.DaysUntilReview(rec, now)) + "d"
	default:
		return ""
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
