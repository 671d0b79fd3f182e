package config

import (
	"fmt"
	"os"
	"strings"
)

// KnownModules lists every module name that can carry an access policy.
// Loading a policy for anything else is a startup error, which catches
// typos in env vars before they silently leave a module unguarded.
var KnownModules = []string{"users", "roles", "auth"}

const accessEnvPrefix = "ACCESS_MODULE_"

// AccessPolicy is the immutable module -> allowed-role-codes table built at
// boot. An absent or empty role set means the module is unrestricted: the
// guard passes every request through regardless of authentication.
type AccessPolicy struct {
	modules map[string]map[string]bool
}

// LoadAccessPolicy scans the environment for ACCESS_MODULE_<NAME> entries,
// each holding a comma-separated list of role codes, e.g.
//
//	ACCESS_MODULE_USERS=admin
//	ACCESS_MODULE_ROLES=admin,support
//
// Unset modules fall back to defaults: users and roles are admin-only.
// Module names are validated against the known set.
func LoadAccessPolicy(known ...string) (AccessPolicy, error) {
	knownSet := make(map[string]bool, len(known))
	for _, m := range known {
		knownSet[m] = true
	}

	modules := map[string]map[string]bool{
		"users": {"admin": true},
		"roles": {"admin": true},
	}
	for _, entry := range os.Environ() {
		k, v, _ := strings.Cut(entry, "=")
		if !strings.HasPrefix(k, accessEnvPrefix) {
			continue
		}
		module := strings.ToLower(strings.TrimPrefix(k, accessEnvPrefix))
		if !knownSet[module] {
			return AccessPolicy{}, fmt.Errorf("access policy for unknown module %q (%s)", module, k)
		}
		roles := map[string]bool{}
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles[r] = true
			}
		}
		modules[module] = roles
	}
	return AccessPolicy{modules: modules}, nil
}

// Roles returns the allowed role codes for a module, nil when unrestricted.
func (p AccessPolicy) Roles(module string) map[string]bool {
	if len(p.modules[module]) == 0 {
		return nil
	}
	return p.modules[module]
}

// Allows reports whether role may access module. Unrestricted modules allow
// every role, including unauthenticated requests.
func (p AccessPolicy) Allows(module, role string) bool {
	roles := p.modules[module]
	if len(roles) == 0 {
		return true
	}
	return roles[role]
}
