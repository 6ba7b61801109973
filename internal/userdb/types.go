package userdb

// PasswdEntry is one record of the password table.
type PasswdEntry struct {
	Name     string
	Password string
	UID      int
	GID      int
	Gecos    string
	Home     string
	Shell    string
}

// ShadowEntry is one record of the shadow table. The aging fields are
// kept as strings because an empty field means "unset" and must survive
// a rewrite unchanged.
type ShadowEntry struct {
	Name       string
	Hash       string
	LastChange string
	Min        string
	Max        string
	Warn       string
	Inactive   string
	Expire     string
	Reserved   string
}
