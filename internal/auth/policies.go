package auth

import (
	"fmt"
	"go-blog-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

// DefaultPolicies are the route permissions of each role. Readers inherit
// anonymous permissions and the author inherits reader permissions.
var DefaultPolicies = [][]string{
	// Anyone can browse and sign in.
	{RoleAnonymous, "/", "GET"},
	{RoleAnonymous, "/posts", "GET"},
	{RoleAnonymous, "/posts/:id", "GET"},
	{RoleAnonymous, "/categories", "GET"},
	{RoleAnonymous, "/categories/:tag/posts", "GET"},
	{RoleAnonymous, "/labels", "GET"},
	{RoleAnonymous, "/labels/:name/posts", "GET"},
	{RoleAnonymous, "/auth/login", "POST"},
	{RoleAnonymous, "/auth/register", "POST"},
	{RoleAnonymous, "/auth/oidc/login", "GET"},
	{RoleAnonymous, "/auth/oidc/callback", "GET"},

	// Readers comment and react.
	{RoleReader, "/auth/logout", "POST"},
	{RoleReader, "/posts/:id/comments", "POST"},
	{RoleReader, "/posts/:id/like", "POST"},
	{RoleReader, "/posts/:id/like", "DELETE"},
	{RoleReader, "/comments/:id/like", "POST"},
	{RoleReader, "/comments/:id/like", "DELETE"},
	{RoleReader, "/comments/:id/dislike", "POST"},
	{RoleReader, "/comments/:id/dislike", "DELETE"},

	// The author publishes and moderates.
	{RoleAuthor, "/posts", "POST"},
	{RoleAuthor, "/posts/:id", "PUT"},
	{RoleAuthor, "/posts/:id", "DELETE"},
	{RoleAuthor, "/comments/:id", "DELETE"},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	inherits := [][2]string{
		{RoleReader, RoleAnonymous},
		{RoleAuthor, RoleReader},
	}
	for _, pair := range inherits {
		if has, _ := e.HasRoleForUser(pair[0], pair[1]); !has {
			if _, err := e.AddRoleForUser(pair[0], pair[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role '%s' -> '%s'", pair[0], pair[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
