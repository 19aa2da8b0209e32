// Command cli is the ops companion to the server: run a poll by hand,
// inspect the stored data, or check the linked account without going
// through HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"runclub-dashboard/internal/config"
	"runclub-dashboard/internal/database"
	"runclub-dashboard/internal/poller"
	"runclub-dashboard/internal/stats"
	"runclub-dashboard/internal/strava"
)

func main() {
	// Disable structured logging for CLI
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors
	})))

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Open database
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	client := strava.NewClient(cfg.StravaClientID, cfg.StravaClientSecret)
	feedPoller := poller.New(cfg, db, client)

	switch command {
	case "poll":
		handlePoll(cfg, feedPoller)
	case "stats":
		handleStats(db)
	case "token":
		handleToken(cfg, db)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: Unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handlePoll(cfg *config.Config, p *poller.Poller) {
	fmt.Printf("Polling club %s (%d pages of %d)...\n", cfg.StravaClubID, cfg.PollPages, cfg.PollPerPage)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := p.Poll(ctx, cfg.PollPerPage, cfg.PollPages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Poll failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Fetched %d activities, %d new\n", result.Fetched, result.Inserted)
}

func handleStats(db *database.DB) {
	rows, err := db.ListAllActivities()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load activities: %v\n", err)
		os.Exit(1)
	}

	activities := make([]stats.Activity, 0, len(rows))
	for _, row := range rows {
		a := stats.Activity{SeenAt: time.Unix(row.FetchedAt, 0).UTC()}
		if row.AthleteName != nil {
			a.AthleteName = *row.AthleteName
		}
		if row.Type != nil {
			a.Type = *row.Type
		}
		if row.SportType != nil {
			a.SportType = *row.SportType
		}
		if row.DistanceM != nil {
			a.DistanceM = *row.DistanceM
		}
		activities = append(activities, a)
	}

	runs := stats.FilterRuns(activities, time.Time{})
	overall, athletes := stats.Leaderboard(runs)

	fmt.Printf("Stored activities: %d (%d runs)\n", len(rows), overall.TotalRuns)
	fmt.Printf("Total distance: %.1f km\n\n", overall.TotalKm)

	for _, a := range athletes {
		fmt.Printf("%-30s %3d runs %8.1f km\n", a.AthleteName, a.Runs, a.TotalKm)
	}
}

func handleToken(cfg *config.Config, db *database.DB) {
	if cfg.StravaServiceAthleteID == "" {
		fmt.Println("No service athlete configured (set STRAVA_SERVICE_ATHLETE_ID).")
		return
	}

	token, err := db.GetAthleteToken(cfg.StravaServiceAthleteID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load token: %v\n", err)
		os.Exit(1)
	}
	if token == nil {
		fmt.Printf("No token stored for athlete %s. Link the account via /api/auth/strava/start.\n",
			cfg.StravaServiceAthleteID)
		return
	}

	expires := time.Unix(token.ExpiresAt, 0)
	fmt.Printf("Athlete: %s\n", token.AthleteID)
	fmt.Printf("Access token expires: %s", expires.Format(time.RFC3339))
	if time.Now().After(expires) {
		fmt.Print(" (expired; next poll will refresh)")
	}
	fmt.Println()
	if token.Scope != nil {
		fmt.Printf("Scope: %s\n", *token.Scope)
	}
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  poll    Run one club feed poll with the configured defaults")
	fmt.Println("  stats   Print the all-time leaderboard from stored data")
	fmt.Println("  token   Show the linked service account's token status")
	fmt.Println("  help    Show this help")
}
