package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskfleet/eventd/internal/audit"
	"github.com/taskfleet/eventd/internal/config"
	"github.com/taskfleet/eventd/internal/database"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		userID     string
		entityType string
		entityID   string
		action     string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List audit log entries",
		Long:  "List audit log entries, newest first, with optional filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			store := audit.NewPostgresStore(db)
			records, err := store.Query(context.Background(), audit.QueryFilter{
				UserID:     userID,
				EntityType: entityType,
				EntityID:   entityID,
				Action:     action,
				Limit:      limit,
			})
			if err != nil {
				return fmt.Errorf("failed to query audit log: %w", err)
			}

			if len(records) == 0 {
				fmt.Println("No audit entries found")
				return nil
			}

			for _, rec := range records {
				fmt.Printf("%s  %-22s %-8s %s\n",
					rec.CreatedAt.Format("2006-01-02 15:04:05"),
					rec.Action,
					rec.EntityType,
					rec.EntityID,
				)
				fmt.Printf("    user: %s\n", rec.UserID)
				if rec.Details != "" {
					fmt.Printf("    details: %s\n", rec.Details)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Filter by user id")
	cmd.Flags().StringVar(&entityType, "entity-type", "", "Filter by entity type (task or reminder)")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "Filter by entity id")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action (e.g. task.created)")
	cmd.Flags().IntVar(&limit, "limit", audit.DefaultQueryLimit, "Maximum entries to return")

	return cmd
}
