package export

// RosterRow is one member line in a classroom roster export.
type RosterRow struct {
	Username string
	FullName string
	Email    string
	Role     string
	JoinedAt string
}

var rosterHeaders = []string{"Username", "Full Name", "Email", "Role", "Joined At"}

func rosterRecord(row RosterRow) []string {
	return []string{row.Username, row.FullName, row.Email, row.Role, row.JoinedAt}
}
