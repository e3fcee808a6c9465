package course

import (
	"strings"

	"github.com/irsalhamdi/course-shop/validate"
)

// Filter returns, in catalog order, the courses matching both the free text
// query and the level selector.
func Filter(courses []Course, query string, level Level) []Course {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if matchQuery(c, q) && matchLevel(c, level) {
			out = append(out, c)
		}
	}
	return out
}

func matchQuery(c Course, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Title), q) ||
		strings.Contains(strings.ToLower(c.Short), q) ||
		strings.Contains(strings.ToLower(strings.Join(c.Tags, " ")), q)
}

func matchLevel(c Course, level Level) bool {
	return level == All || level == "" || c.Level == level
}

func Find(courses []Course, id string) (Course, bool) {
	for _, c := range courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

func Validate(c Course) error {
	return validate.Check(c)
}
