package admin

import "github.com/ignite/coreapp/internal/domain"

// AccountAdmin lists accounts by ID and shows credentials first on the edit
// form.
var AccountAdmin = ModelAdmin{
	Name:        "accounts",
	Ordering:    []string{"id"},
	ListDisplay: []string{"email", "name"},
	Fieldsets: []Fieldset{
		{Title: "", Fields: []string{"email", "password"}},
		{Title: "Personal Info", Fields: []string{"name"}},
		{Title: "Permissions", Fields: []string{"is_active", "is_staff", "is_superuser"}},
		{Title: "Important dates", Fields: []string{"last_login"}},
	},
}

// PasswordSummarizer renders an encoded password without exposing the
// hash. *password.Manager satisfies it.
type PasswordSummarizer interface {
	Summary(encoded string) map[string]string
}

// AccountFields flattens a into the admin field map. The password is
// replaced by its masked summary.
func AccountFields(a *domain.Account, pw PasswordSummarizer) map[string]any {
	return map[string]any{
		"id":           a.ID,
		StrField:       a.String(),
		"email":        a.Email,
		"name":         a.Name,
		"password":     pw.Summary(a.Password),
		"is_active":    a.IsActive,
		"is_staff":     a.IsStaff,
		"is_superuser": a.IsSuperuser,
		"last_login":   a.LastLogin,
	}
}
