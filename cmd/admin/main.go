package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"grievgo/backend/internal/account"
	"grievgo/backend/internal/ai"
	"grievgo/backend/internal/lifecycle"
	"grievgo/backend/internal/models"
	"grievgo/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "seed-admin":
		if len(os.Args) != 6 {
			fmt.Println("Usage: admin seed-admin <name> <email> <password> <department>")
			os.Exit(1)
		}
		accounts := account.NewService(storageSvc)
		user, err := accounts.RegisterAdmin(os.Args[2], os.Args[3], os.Args[4], os.Args[5])
		if err != nil {
			log.Fatalf("Error seeding admin: %v", err)
		}
		fmt.Printf("Admin %s created for %s.\n", user.Email, user.Department)
	case "transition":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin transition <grievance_id> <status> [reason] [notes]")
			os.Exit(1)
		}
		var reason, notes string
		if len(os.Args) > 4 {
			reason = os.Args[4]
		}
		if len(os.Args) > 5 {
			notes = os.Args[5]
		}
		lc := lifecycle.NewService(storageSvc, ai.NewService(nil))
		grievance, err := lc.Transition(os.Args[2], models.Status(os.Args[3]), reason, notes)
		if err != nil {
			log.Fatalf("Error updating status: %v", err)
		}
		fmt.Printf("Grievance %s is now %s.\n", grievance.ID, grievance.Status)
	case "list":
		grievances, err := storageSvc.ListGrievances()
		if err != nil {
			log.Fatalf("Error listing grievances: %v", err)
		}
		for _, g := range grievances {
			line := fmt.Sprintf("%s  %-12s  %-28s  %s", g.ID, g.Status, g.Organization, g.DateFiled)
			if last := g.CurrentHistory(); last != nil && last.Notes != "" {
				line += "  " + last.Notes
			}
			fmt.Println(line)
		}
	case "export":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin export <file>")
			os.Exit(1)
		}
		if err := exportSnapshot(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error exporting snapshot: %v", err)
		}
		fmt.Printf("Snapshot written to %s.\n", os.Args[2])
	case "import":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin import <file>")
			os.Exit(1)
		}
		if err := importSnapshot(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error importing snapshot: %v", err)
		}
		fmt.Printf("Snapshot %s imported.\n", os.Args[2])
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func exportSnapshot(s *storage.Service, path string) error {
	snap, err := s.ExportSnapshot()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func importSnapshot(s *storage.Service, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	return s.ImportSnapshot(&snap)
}
