package sqlxrepos

import "github.com/google/uuid"

// validID reports whether id parses as a uuid. Primary keys are uuid
// columns, so a malformed id must read as "does not exist" instead of
// failing the query at the database.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validIDs drops ids that do not parse as uuids.
func validIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			out = append(out, id)
		}
	}
	return out
}
