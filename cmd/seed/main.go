// Command seed provisions the accounts and Split Bot templates the console
// needs before the first login. Safe to run repeatedly: users are keyed on
// email and templates on name, so existing rows are left alone.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/splitlease/message-curation/internal/config"
	"github.com/splitlease/message-curation/internal/database"
	"github.com/splitlease/message-curation/internal/model"
	"github.com/splitlease/message-curation/internal/utils"
)

type seedUser struct {
	firstName  string
	lastName   string
	email      string
	password   string
	role       string
	isSplitBot bool
}

type seedTemplate struct {
	name        string
	description string
	template    string
	category    string
}

var users = []seedUser{
	{"Split", "Bot", "bot@splitlease.com", "", model.RoleUser, true},
	{"Console", "Admin", "admin@splitlease.com", "changeme-admin", model.RoleAdmin, false},
	{"Support", "Staff", "support@splitlease.com", "changeme-support", model.RoleSupportStaff, false},
}

var templates = []seedTemplate{
	{
		name:        model.TemplateRedactedContactInfo,
		description: "Warn that contact information was removed from a message",
		template:    "Please note: contact information has been removed from a recent message in this conversation. Sharing phone numbers or email addresses before a confirmed booking violates our terms of service.",
		category:    "moderation",
	},
	{
		name:        model.TemplateLimitMessages,
		description: "Ask participants to keep the conversation on the platform",
		template:    "A reminder from Split Lease: please keep all communication within the platform. Conversations held elsewhere cannot be protected by our guarantee.",
		category:    "moderation",
	},
	{
		name:        model.TemplateLeaseDocumentsSigned,
		description: "Announce that lease documents were signed and processed",
		template:    "Great news! Your lease documents have been signed and processed. You can now proceed with your move-in arrangements.",
		category:    "lease",
	},
}

func main() {
	demo := flag.Bool("demo", false, "also create a sample listing, thread and conversation")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, u := range users {
		if err := ensureUser(ctx, db, u, cfg.BcryptCost); err != nil {
			log.Fatalf("seed user %s: %v", u.email, err)
		}
	}
	for _, t := range templates {
		if err := ensureTemplate(ctx, db, t); err != nil {
			log.Fatalf("seed template %s: %v", t.name, err)
		}
	}
	if *demo {
		if err := seedDemo(ctx, db); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}
	log.Println("seed complete")
}

func ensureUser(ctx context.Context, db *sql.DB, u seedUser, bcryptCost int) error {
	var id uint64
	err := db.QueryRowContext(ctx, "SELECT id FROM users WHERE email=?", u.email).Scan(&id)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	var hash sql.NullString
	if u.password != "" {
		h, err := utils.HashPassword(u.password, bcryptCost)
		if err != nil {
			return err
		}
		hash = sql.NullString{String: h, Valid: true}
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, role, is_split_bot)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.firstName, u.lastName, u.email, hash, u.role, u.isSplitBot)
	if err == nil {
		log.Printf("created user %s (%s)", u.email, u.role)
	}
	return err
}

func ensureTemplate(ctx context.Context, db *sql.DB, t seedTemplate) error {
	var id uint64
	err := db.QueryRowContext(ctx, "SELECT id FROM split_bot_templates WHERE name=?", t.name).Scan(&id)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO split_bot_templates (name, description, template, category)
		 VALUES (?, ?, ?, ?)`,
		t.name, t.description, t.template, t.category)
	if err == nil {
		log.Printf("created template %s", t.name)
	}
	return err
}

// seedDemo creates one host, one guest, a listing with a thread, a short
// conversation and an unsigned proposal. Useful for poking at the console
// locally; never run it against production data.
func seedDemo(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		log.Println("demo data already present, skipping")
		return nil
	}

	hostID, err := insertReturningID(ctx, db,
		`INSERT INTO users (first_name, last_name, email, role, is_split_bot) VALUES (?, ?, ?, ?, 0)`,
		"Harriet", "Host", "harriet.host@example.com", model.RoleUser)
	if err != nil {
		return err
	}
	guestID, err := insertReturningID(ctx, db,
		`INSERT INTO users (first_name, last_name, email, role, is_split_bot) VALUES (?, ?, ?, ?, 0)`,
		"Gary", "Guest", "gary.guest@example.com", model.RoleUser)
	if err != nil {
		return err
	}
	listingID, err := insertReturningID(ctx, db,
		`INSERT INTO listings (name, host_user_id) VALUES (?, ?)`,
		"Sunny 2BR in Chelsea", hostID)
	if err != nil {
		return err
	}
	threadID, err := insertReturningID(ctx, db,
		`INSERT INTO threads (listing_id) VALUES (?)`, listingID)
	if err != nil {
		return err
	}
	conversation := []struct {
		originator uint64
		body       string
	}{
		{guestID, "Hi! Is the apartment available for a split starting next month?"},
		{hostID, "Yes it is. Which nights were you thinking?"},
		{guestID, "Monday through Wednesday, ideally."},
	}
	for _, m := range conversation {
		if _, err := insertReturningID(ctx, db,
			`INSERT INTO messages (thread_id, guest_user_id, host_user_id, originator_user_id, message_body)
			 VALUES (?, ?, ?, ?, ?)`,
			threadID, guestID, hostID, m.originator, m.body); err != nil {
			return err
		}
	}
	if _, err := insertReturningID(ctx, db,
		`INSERT INTO proposals (thread_id, lease_documents_signed) VALUES (?, 0)`, threadID); err != nil {
		return err
	}
	log.Printf("created demo listing %d with thread %d", listingID, threadID)
	return nil
}

func insertReturningID(ctx context.Context, db *sql.DB, query string, args ...any) (uint64, error) {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return uint64(id), err
}
