package models

// Principal is the authenticated caller as resolved from the session token
// and re-checked against the current account row.
type Principal struct {
	AccountID int
	Role      Role
}

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsEmployee() bool { return p.Role == RoleEmployee }

// Valid reports whether the principal refers to an account.
func (p Principal) Valid() bool { return p.AccountID > 0 && p.Role != "" }
