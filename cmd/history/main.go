package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"roomcompare/internal/model"
	"roomcompare/internal/repository"
	"roomcompare/internal/repository/sqlite"
)

func main() {
	dbPath := flag.String("db", "data/history.db", "Database path")
	limit := flag.Int("limit", 20, "Number of comparisons to list")
	status := flag.String("status", "", "Only list comparisons with this status (ok or failed)")
	since := flag.Duration("since", 0, "Only list comparisons from this far back (for example 24h)")
	pruneDays := flag.Int("prune-days", 0, "Delete comparisons older than this many days before listing")
	clearAll := flag.Bool("clear", false, "Delete every stored comparison and exit")
	flag.Parse()

	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("Database not found: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewComparisonRepository(db)

	if *clearAll {
		if err := repo.DeleteAll(); err != nil {
			log.Fatalf("Failed to clear history: %v", err)
		}
		fmt.Println("🗑️  Comparison history cleared")
		return
	}

	if *pruneDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -*pruneDays)
		removed, err := repo.DeleteOlderThan(cutoff)
		if err != nil {
			log.Fatalf("Failed to prune history: %v", err)
		}
		fmt.Printf("🧹 Removed %d comparison(s) older than %s\n\n", removed, cutoff.Format("2006-01-02"))
	}

	filter := &repository.ComparisonFilter{Limit: *limit}
	if *since > 0 {
		filter.Since = time.Now().Add(-*since)
	}
	switch s := model.ComparisonStatus(*status); s {
	case "":
	case model.ComparisonOK, model.ComparisonFailed:
		filter.Status = s
	default:
		log.Fatalf("Unknown status %q", *status)
	}

	comparisons, err := repo.List(filter)
	if err != nil {
		log.Fatalf("Failed to list comparisons: %v", err)
	}
	total, err := repo.Count(filter)
	if err != nil {
		log.Fatalf("Failed to count comparisons: %v", err)
	}

	if len(comparisons) == 0 {
		fmt.Println("No comparisons recorded")
		return
	}

	fmt.Printf("Showing %d of %d comparison(s)\n\n", len(comparisons), total)
	for _, c := range comparisons {
		counts := c.CountByCategory()
		fmt.Printf("#%d  %s  %-6s  %s vs %s  (%s)\n",
			c.ID, c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Status,
			c.CleanFilename, c.MessyFilename, c.Duration.Round(time.Millisecond))
		if c.Status == model.ComparisonFailed {
			fmt.Printf("      error: %s\n", c.Error)
			continue
		}
		fmt.Printf("      removed=%d appeared=%d changed=%d\n",
			counts[model.CategoryRemoved], counts[model.CategoryAppeared], counts[model.CategoryChanged])
	}

	labels, err := repo.LabelCounts("", 10)
	if err == nil && len(labels) > 0 {
		names := make([]string, 0, len(labels))
		for name := range labels {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if labels[names[i]] != labels[names[j]] {
				return labels[names[i]] > labels[names[j]]
			}
			return names[i] < names[j]
		})

		fmt.Printf("\n📊 Most reported objects:\n")
		for _, name := range names {
			fmt.Printf("   - %s: %d\n", name, labels[name])
		}
	}
}
