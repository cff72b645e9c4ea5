package remoteauth

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Claim is a single name/value statement about an identity.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Principal is a claims-bearing identity. The zero value is the anonymous
// principal: no claims, not authenticated.
type Principal struct {
	// AuthenticationType names the scheme the identity was established
	// with. Empty means anonymous.
	AuthenticationType string `json:"authenticationType,omitempty"`

	// NameClaim and RoleClaim are the claim types used by Name and Roles.
	NameClaim string `json:"nameClaim,omitempty"`
	RoleClaim string `json:"roleClaim,omitempty"`

	// Claims are the identity's claims, in the order they were mapped.
	Claims []Claim `json:"claims,omitempty"`
}

// IsAuthenticated reports whether the principal represents a signed-in user.
func (p Principal) IsAuthenticated() bool {
	return p.AuthenticationType != ""
}

// Name returns the value of the principal's name claim, or "".
func (p Principal) Name() string {
	return p.ClaimValue(p.NameClaim)
}

// Roles returns every value of the principal's role claim.
func (p Principal) Roles() []string {
	if p.RoleClaim == "" {
		return nil
	}
	var roles []string
	for _, c := range p.Claims {
		if c.Type == p.RoleClaim {
			roles = append(roles, c.Value)
		}
	}
	return roles
}

// ClaimValue returns the first claim value of the given type, or "".
func (p Principal) ClaimValue(claimType string) string {
	if claimType == "" {
		return ""
	}
	for _, c := range p.Claims {
		if c.Type == claimType {
			return c.Value
		}
	}
	return ""
}

// PrincipalFactory maps a raw bridge account to a Principal. The schema of
// the account bag varies per provider; implementations own the mapping.
type PrincipalFactory interface {
	CreatePrincipal(ctx context.Context, account Account, options UserOptions) (Principal, error)
}

// ClaimsPrincipalFactory is the default PrincipalFactory: every non-null
// account property becomes a claim, with array values flattened into one
// claim per element. A nil account maps to the anonymous principal.
type ClaimsPrincipalFactory struct{}

// CreatePrincipal implements PrincipalFactory.
func (ClaimsPrincipalFactory) CreatePrincipal(_ context.Context, account Account, options UserOptions) (Principal, error) {
	if account == nil {
		return Principal{}, nil
	}
	p := Principal{
		AuthenticationType: options.AuthenticationType,
		NameClaim:          options.NameClaim,
		RoleClaim:          options.RoleClaim,
	}
	for _, name := range account.sortedKeys() {
		value := account[name]
		if value == nil {
			continue
		}
		if values, ok := value.([]any); ok {
			for _, v := range values {
				p.Claims = append(p.Claims, Claim{Type: name, Value: claimString(v)})
			}
			continue
		}
		p.Claims = append(p.Claims, Claim{Type: name, Value: claimString(value)})
	}
	return p, nil
}

// sortedKeys returns the account's keys in a stable order, so repeated
// mappings of the same account produce identical claim sequences.
func (a Account) sortedKeys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func claimString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case json.Number:
		return value.String()
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(raw)
	}
}
