package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"staffdesk/internal/auth"
	"staffdesk/internal/config"
	"staffdesk/internal/db"
	"staffdesk/internal/timeutil"
)

type demoAccount struct {
	email, password, name, nationalID string
	role, status                      string
}

var demoAccounts = []demoAccount{
	{"admin@demo.com", "admin123", "Administrator", "3171000000000001", "ADMIN", "APPROVED"},
	{"budi@demo.com", "employee123", "Budi Santoso", "3171000000000002", "EMPLOYEE", "APPROVED"},
	{"siti@demo.com", "employee123", "Siti Rahayu", "3171000000000003", "EMPLOYEE", "APPROVED"},
	{"andi@demo.com", "employee123", "Andi Wijaya", "3171000000000004", "EMPLOYEE", "PENDING"},
}

func main() {
	yes := flag.Bool("yes", false, "Skip the confirmation prompt")
	flag.Parse()

	fmt.Println("Reset staffdesk database")
	fmt.Println("This deletes every account, task, transaction and notification,")
	fmt.Println("then seeds demo accounts and a small ledger.")

	if !*yes {
		fmt.Print("Type 'yes' to confirm: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" {
			fmt.Println("Reset cancelled.")
			return
		}
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `TRUNCATE TABLE notifications, task_submissions, tasks, transactions, accounts RESTART IDENTITY CASCADE`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}
	fmt.Println("  cleared all tables")

	ids := make(map[string]int, len(demoAccounts))
	for _, a := range demoAccounts {
		hash, err := auth.HashPassword(a.password)
		if err != nil {
			log.Fatalf("hash password for %s: %v", a.email, err)
		}
		var id int
		err = tx.QueryRow(ctx, `
			INSERT INTO accounts (email, password_hash, full_name, address, gender, national_id, phone,
			                      bank_account_number, role, status)
			VALUES ($1, $2, $3, 'Jl. Sudirman No. 1, Jakarta', 'MALE', $4, '081234567890', '1234567890', $5, $6)
			RETURNING id`,
			a.email, hash, a.name, a.nationalID, a.role, a.status,
		).Scan(&id)
		if err != nil {
			log.Fatalf("create account %s: %v", a.email, err)
		}
		ids[a.email] = id
	}
	fmt.Printf("  created %d accounts\n", len(demoAccounts))

	admin := ids["admin@demo.com"]
	_, err = tx.Exec(ctx, `
		INSERT INTO tasks (title, description, due_at, assignment, assignee_id, created_by_id)
		VALUES ('Prepare monthly report', 'Summarise the sales pipeline for this month', $1, 'SPECIFIC', $2, $3),
		       ('Fill in the team survey', 'Everyone please complete the engagement survey', NULL, 'ALL_EMPLOYEES', NULL, $3)`,
		timeutil.Now().AddDate(0, 0, 7), ids["budi@demo.com"], admin,
	)
	if err != nil {
		log.Fatalf("create tasks: %v", err)
	}
	fmt.Println("  created demo tasks")

	today := timeutil.StartOfDay(timeutil.Now())
	ledger := []struct {
		typ, category, amount, description string
		daysAgo                            int
	}{
		{"INCOME", "SALARY", "15000000", "Client retainer", 20},
		{"INCOME", "COMMISSION", "2500000", "Referral commission", 12},
		{"EXPENSE", "RENT", "6000000", "Office rent", 18},
		{"EXPENSE", "SOFTWARE", "750000.50", "Design tool licences", 5},
		{"EXPENSE", "MEALS", "325000", "Team lunch", 1},
	}
	for _, l := range ledger {
		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (type, category, amount, description, date, created_by_id)
			VALUES ($1, $2, $3::numeric, $4, $5, $6)`,
			l.typ, l.category, l.amount, l.description, today.AddDate(0, 0, -l.daysAgo), admin,
		)
		if err != nil {
			log.Fatalf("create transaction %q: %v", l.description, err)
		}
	}
	fmt.Printf("  created %d transactions\n", len(ledger))

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("failed to commit: %v", err)
	}

	fmt.Println()
	fmt.Println("Database reset. Demo credentials:")
	for _, a := range demoAccounts {
		fmt.Printf("  %-16s %-12s %s (%s)\n", a.email, a.password, a.role, a.status)
	}
}
