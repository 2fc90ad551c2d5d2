// Package history persists the assistant prompt history of the CLI.
//
// The history is bounded: Append inserts a prompt and trims the oldest rows
// beyond the configured limit in one transaction. List returns the newest
// prompts first.
//
// Typical Usage
//
//	repo := history.NewSQLiteRepository(db)
//	_ = repo.Append(ctx, "is this phishing?", time.Now(), 50)
//	recent, _ := repo.List(ctx, 10)
package history
