package config

import "github.com/JonMunkholm/leadsync/internal/core"

// Tier is a backend credential tier.
type Tier int

const (
	// Restricted is the anon/publishable key. Row-level security applies, so
	// it can append rows but not read or update rows owned by others.
	Restricted Tier = iota

	// Elevated is the service role key, which bypasses row-level security.
	Elevated
)

func (t Tier) String() string {
	if t == Elevated {
		return "elevated"
	}
	return "restricted"
}

// Credential is a backend URL together with the key for one tier.
type Credential struct {
	URL  string
	Key  string
	Tier Tier
}

// Credential returns the URL and key for the requested tier.
// A restricted request falls back to the service key when no restricted key
// is configured. Missing values are a *core.ConfigError.
func (b *BackendConfig) Credential(tier Tier) (Credential, error) {
	if b.URL == "" {
		return Credential{}, &core.ConfigError{
			Field:       "SUPABASE_URL",
			Problem:     "SUPABASE_URL is not set",
			Remediation: "add SUPABASE_URL=https://<project>.supabase.co to .env",
		}
	}

	switch tier {
	case Elevated:
		if b.ServiceKey == "" {
			return Credential{}, &core.ConfigError{
				Field:       "SUPABASE_SERVICE_KEY",
				Problem:     "SUPABASE_SERVICE_KEY is not set; lookups and updates need the service role key",
				Remediation: "add SUPABASE_SERVICE_KEY to .env, or rerun with --append-only to insert with the restricted key",
			}
		}
		return Credential{URL: b.URL, Key: b.ServiceKey, Tier: Elevated}, nil

	default:
		if b.Key != "" {
			return Credential{URL: b.URL, Key: b.Key, Tier: Restricted}, nil
		}
		if b.ServiceKey != "" {
			return Credential{URL: b.URL, Key: b.ServiceKey, Tier: Elevated}, nil
		}
		return Credential{}, &core.ConfigError{
			Field:       "SUPABASE_KEY",
			Problem:     "no backend key is set",
			Remediation: "add SUPABASE_KEY (anon key) or SUPABASE_SERVICE_KEY to .env",
		}
	}
}
