package user

// Principal is the authenticated identity resolved by the external account
// service. The core never stores credentials.
type Principal struct {
	UserID string
	Email  string
}
