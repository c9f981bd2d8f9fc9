package commands

import (
	"context"
	"fmt"

	"github.com/gideonapp/engage/internal/config"
	"github.com/gideonapp/engage/internal/database"
	"github.com/spf13/cobra"
)

// NewTuningCmd creates the engagement tuning command with list and set subcommands.
func NewTuningCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tuning",
		Short: "Manage engagement tuning configuration",
		Long:  "List or update engagement classifier thresholds and time-of-day bucket boundaries. Stored in database.",
	}
	cmd.AddCommand(newTuningListCmd())
	cmd.AddCommand(newTuningSetCmd())
	return cmd
}

func newTuningListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current engagement tuning configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()
			repo := database.NewEngagementConfigRepository(db)
			c, err := repo.Get(context.Background())
			if err != nil {
				return fmt.Errorf("get engagement tuning: %w", err)
			}
			fmt.Println("Engagement tuning configuration:")
			fmt.Printf("  Moderate sessions threshold: %d\n", c.ModerateSessions)
			fmt.Printf("  High sessions threshold:     %d\n", c.HighSessions)
			fmt.Printf("  Morning start hour:          %d\n", c.MorningStartHour)
			fmt.Printf("  Midday start hour:           %d\n", c.MiddayStartHour)
			fmt.Printf("  Evening start hour:          %d\n", c.EveningStartHour)
			fmt.Printf("  Evening end hour:            %d\n", c.EveningEndHour)
			fmt.Printf("  Activity window days:        %d\n", c.ActivityWindowDays)
			return nil
		},
	}
}

func newTuningSetCmd() *cobra.Command {
	var (
		moderateSessions   int
		highSessions       int
		morningHour        int
		middayHour         int
		eveningHour        int
		eveningEnd         int
		activityWindowDays int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set engagement tuning configuration",
		Long:  "Update engagement tuning. Flags left at -1 keep their current value.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()
			repo := database.NewEngagementConfigRepository(db)
			ctx := context.Background()

			c, err := repo.Get(ctx)
			if err != nil {
				return fmt.Errorf("get engagement tuning: %w", err)
			}

			if moderateSessions >= 0 {
				c.ModerateSessions = moderateSessions
			}
			if highSessions >= 0 {
				c.HighSessions = highSessions
			}
			if morningHour >= 0 {
				c.MorningStartHour = morningHour
			}
			if middayHour >= 0 {
				c.MiddayStartHour = middayHour
			}
			if eveningHour >= 0 {
				c.EveningStartHour = eveningHour
			}
			if eveningEnd >= 0 {
				c.EveningEndHour = eveningEnd
			}
			if activityWindowDays >= 0 {
				c.ActivityWindowDays = activityWindowDays
			}

			if err := repo.Set(ctx, c); err != nil {
				return fmt.Errorf("set engagement tuning: %w", err)
			}
			fmt.Println("Engagement tuning configuration updated.")
			return nil
		},
	}

	cmd.Flags().IntVar(&moderateSessions, "moderate-sessions", -1, "Session count at which engagement becomes moderate")
	cmd.Flags().IntVar(&highSessions, "high-sessions", -1, "Session count at which engagement becomes high")
	cmd.Flags().IntVar(&morningHour, "morning-hour", -1, "Hour the morning bucket starts (0-23)")
	cmd.Flags().IntVar(&middayHour, "midday-hour", -1, "Hour the midday bucket starts (0-23)")
	cmd.Flags().IntVar(&eveningHour, "evening-hour", -1, "Hour the evening bucket starts (0-23)")
	cmd.Flags().IntVar(&eveningEnd, "evening-end", -1, "Hour the evening bucket ends (0-23)")
	cmd.Flags().IntVar(&activityWindowDays, "activity-window-days", -1, "Trailing active window required for monthly reports")

	return cmd
}
