// Command inspect_schema prints the columns, constraints and indexes of the relationship tables.
package main

import (
	"context"
	"fmt"
	"log"

	"amizades/internal/config"
	"amizades/internal/database"
)

var tables = []string{"profiles", "friend_requests", "friendships"}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	for _, table := range tables {
		var columns []struct {
			ColumnName string `gorm:"column:column_name"`
			DataType   string `gorm:"column:data_type"`
		}
		db.Raw("SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position", table).Scan(&columns)
		fmt.Printf("Columns in %s:\n", table)
		for _, c := range columns {
			fmt.Printf(" - %s: %s\n", c.ColumnName, c.DataType)
		}

		var constraints []struct {
			ConstraintName string `gorm:"column:conname"`
			Definition     string `gorm:"column:definition"`
		}
		db.Raw("SELECT conname, pg_get_constraintdef(oid) AS definition FROM pg_constraint WHERE conrelid = ?::regclass", table).Scan(&constraints)
		fmt.Printf("Constraints in %s:\n", table)
		for _, c := range constraints {
			fmt.Printf(" - %s: %s\n", c.ConstraintName, c.Definition)
		}

		var indexes []struct {
			IndexName  string `gorm:"column:indexname"`
			Definition string `gorm:"column:indexdef"`
		}
		db.Raw("SELECT indexname, indexdef FROM pg_indexes WHERE tablename = ?", table).Scan(&indexes)
		fmt.Printf("Indexes in %s:\n", table)
		for _, i := range indexes {
			fmt.Printf(" - %s: %s\n", i.IndexName, i.Definition)
		}
	}

	status, err := database.GetSchemaStatus(ctx, db)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Applied migrations: %v\n", status.AppliedVersions)
	for _, m := range status.PendingMigrations {
		fmt.Printf("Pending: %s\n", m.String())
	}
}
