// Package account implements the account factory and the operations on
// email-identified accounts.
//
// CreateUser is the only way new accounts enter the system: it rejects an
// empty email before touching storage, normalizes the email's domain,
// and stores an encoded password hash. CreateSuperuser runs CreateUser and
// then escalates the staff and superuser flags with a second save.
//
// The service layer contains business rules only and depends on the
// Repository interface defined in repository.go. It never imports
// net/http or database/sql directly.
package account
