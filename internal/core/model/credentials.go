package model

// Credentials authenticate against the usage endpoint
type Credentials struct {
	OrgID      string `json:"orgId"`
	SessionKey string `json:"sessionKey"`
}

// Complete reports whether both required fields are set
func (c Credentials) Complete() bool {
	return c.OrgID != "" && c.SessionKey != ""
}

// MaskedKey returns the session key with all but the last four characters hidden
func (c Credentials) MaskedKey() string {
	if len(c.SessionKey) <= 4 {
		return "****"
	}
	return "****" + c.SessionKey[len(c.SessionKey)-4:]
}
