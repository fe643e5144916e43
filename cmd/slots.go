package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lunarweb/schedcal/internal/calendar"
	"github.com/lunarweb/schedcal/internal/google"
	"github.com/lunarweb/schedcal/internal/schedule"
)

func newSlotsCmd() *cobra.Command {
	var cfg ServeConfig
	var date string

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print free slots for a date",
		Long: `Print the free, bookable slots for a date without starting the service.

Useful for checking calendar sharing and working-hours configuration:
the command runs the same token exchange and busy-interval fetch as the
HTTP service and prints the resulting slots.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadServeEnvVars(cmd, &cfg)
			return runSlots(cmd, cfg, date)
		},
	}

	cmd.Flags().StringVar(&cfg.CalendarID, "calendar-id", "", "Calendar to compute slots for. Can also use CALENDAR_ID env var.")
	cmd.Flags().StringVar(&cfg.KeyFile, "service-account-file", "", "Path to the service account key JSON file. Can also use GOOGLE_SERVICE_ACCOUNT_FILE env var.")
	cmd.Flags().StringVar(&cfg.Timezone, "timezone", "Europe/London", "IANA time zone for working hours and day bounds")
	cmd.Flags().StringVar(&cfg.DayStart, "day-start", "09:00", "Start of the working day (HH:MM)")
	cmd.Flags().StringVar(&cfg.DayEnd, "day-end", "17:00", "End of the working day (HH:MM)")
	cmd.Flags().IntVar(&cfg.SlotMinutes, "slot-minutes", 30, "Slot length in minutes")
	cmd.Flags().StringVar(&date, "date", "", "Date to compute slots for (YYYY-MM-DD, default: today)")

	return cmd
}

func runSlots(cmd *cobra.Command, cfg ServeConfig, date string) error {
	if cfg.CalendarID == "" {
		return fmt.Errorf("calendar ID is required: set --calendar-id or CALENDAR_ID")
	}

	hours, err := schedule.NewWorkingHours(cfg.DayStart, cfg.DayEnd, time.Duration(cfg.SlotMinutes)*time.Minute, cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid working hours: %w", err)
	}

	var day time.Time
	if date == "" {
		now := time.Now().In(hours.Location)
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, hours.Location)
	} else {
		day, err = time.ParseInLocation("2006-01-02", date, hours.Location)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", date, err)
		}
	}

	key, err := loadServiceAccountKey(cfg)
	if err != nil {
		return err
	}

	// One-shot invocation, no point caching the token
	src, err := google.NewTokenSource(key, google.TokenSourceConfig{})
	if err != nil {
		return fmt.Errorf("failed to create token source: %w", err)
	}

	ctx := cmd.Context()
	cal, err := calendar.NewClient(ctx, src)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	busy, err := cal.BusyIntervals(ctx, cfg.CalendarID, day, hours.Location)
	if err != nil {
		return fmt.Errorf("failed to fetch busy intervals: %w", err)
	}

	slots := schedule.FreeSlots(day, busy, hours)
	if len(slots) == 0 {
		cmd.Printf("No free slots on %s\n", day.Format("2006-01-02"))
		return nil
	}

	cmd.Printf("Free slots on %s (%s):\n", day.Format("2006-01-02"), hours.Location)
	for _, slot := range slots {
		cmd.Printf("  %s - %s\n", slot.Start.Format("15:04"), slot.End.Format("15:04"))
	}
	return nil
}
