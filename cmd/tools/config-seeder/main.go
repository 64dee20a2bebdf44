// cmd/tools/config-seeder/main.go

// config-seeder loads a notification configuration registry file, validates
// it and upserts its configurations and recipient rules into Postgres.
// Existing rules of a seeded configuration are replaced wholesale.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"academic-notifications/internal/common/config"
	"academic-notifications/internal/common/database"
	"academic-notifications/internal/models"
	"academic-notifications/pkg/registry"
)

func main() {
	path := flag.String("path", "configs/notification-registry.json", "Path to registry file")
	validateOnly := flag.Bool("validate", false, "Validate the registry file and exit")
	flag.Parse()

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		fmt.Printf("Error loading registry: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d configurations from %s\n", len(reg.Configurations), *path)

	if *validateOnly {
		fmt.Println("Registry validation passed.")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seed(ctx, pg.GetDB(), reg); err != nil {
		fmt.Printf("Error seeding configurations: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Seeding completed.")
}

func seed(ctx context.Context, db *sql.DB, reg *registry.ConfigRegistry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, entry := range reg.Configurations {
		var configID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO notification_configurations (event_name, subject_template, body_template, active)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (event_name) DO UPDATE SET
				subject_template = EXCLUDED.subject_template,
				body_template = EXCLUDED.body_template,
				active = EXCLUDED.active
			RETURNING id`,
			entry.EventName, entry.SubjectTemplate, entry.BodyTemplate, entry.Active,
		).Scan(&configID)
		if err != nil {
			return fmt.Errorf("upsert configuration %s: %w", entry.EventName, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM recipient_rules WHERE config_id = $1`, configID); err != nil {
			return fmt.Errorf("clear rules for %s: %w", entry.EventName, err)
		}

		for _, rule := range entry.Rules {
			// the schema already constrains bucket and kind; re-check against
			// the model's closed sets so a schema drift cannot seed rows the
			// resolver would reject
			model := models.RecipientRule{
				Bucket:   models.RecipientBucket(rule.Bucket),
				Kind:     models.RuleKind(rule.Kind),
				Value:    rule.Value,
				Priority: rule.Priority,
			}
			if err := model.Validate(); err != nil {
				return fmt.Errorf("rule for %s: %w", entry.EventName, err)
			}

			conditionJSON := ""
			if len(rule.Condition) > 0 {
				raw, err := json.Marshal(rule.Condition)
				if err != nil {
					return fmt.Errorf("marshal condition for %s: %w", entry.EventName, err)
				}
				conditionJSON = string(raw)
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO recipient_rules (config_id, bucket, kind, value, condition_json, priority)
				VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
				configID, rule.Bucket, rule.Kind, rule.Value, conditionJSON, rule.Priority,
			); err != nil {
				return fmt.Errorf("insert rule for %s: %w", entry.EventName, err)
			}
		}

		fmt.Printf("Seeded %s (%d rules)\n", entry.EventName, len(entry.Rules))
	}

	return tx.Commit()
}
