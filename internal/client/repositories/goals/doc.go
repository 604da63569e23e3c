// Package goals persists saved budget goals in the local SQLite database.
//
// Amounts are stored as integer cents, dates as RFC 3339 text. Listings are
// newest first.
//
//	repo := goals.NewSQLiteRepository(db)
//	g, _ := repo.Create(ctx, goal)
//	list, _ := repo.List(ctx)
//	_ = repo.Delete(ctx, g.ID)
package goals
