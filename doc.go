// Package userkv loads user records into a key-value store and answers a
// fixed set of queries about them.
//
// It connects the core query logic with the store adapters: a Redis server
// through go-redis, or an in-process memory store for tests and dry runs.
//
// Queries:
//
//   - **User**: every attribute of one user.
//   - **Coordinates**: longitude and latitude of one user.
//   - **EvenUsers**: cursor scan keeping users with an even numeric id.
//   - **SearchUsers**: secondary-index search by gender, country and latitude.
//   - **TopPlayers**: best leaderboard entries joined with their email.
//
// Input files hold one record per line: an id followed by field/value pairs,
// separated by whitespace, with double quotes ignored.
//
//	user:1 first_name "Peter" last_name "Cooper" email "pcooper@example.com"
//
// Usage:
//
//	svc, err := userkv.New(ctx,
//		userkv.WithAddr("127.0.0.1", 6379),
//		userkv.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	if _, err := svc.LoadUsers(ctx, "users.txt"); err != nil {
//		return err
//	}
//	fields, err := svc.User(ctx, "1")
package userkv
