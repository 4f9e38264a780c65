package sheet

import (
	"regexp"
	"strings"

	"github.com/ignite/mailblast/internal/recipient"
)

var spaceRe = regexp.MustCompile(`\s+`)

// emailColumn finds the first column, in sheet order, whose name contains
// "email" or "mail" (case-insensitive). Returns "" when none qualifies.
func emailColumn(columns []string) string {
	for _, c := range columns {
		lower := strings.ToLower(c)
		if strings.Contains(lower, "email") || strings.Contains(lower, "mail") {
			return c
		}
	}
	return ""
}

func normalizeKey(k string) string {
	return spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(k)), "_")
}

// Extract builds recipients from decoded rows. A row contributes a recipient
// only when its email column holds a non-empty value containing "@". Every
// other column becomes a personalization variable with a lowercased,
// underscore-joined key; empty values are skipped. The conventional columns
// name/Name, firstname/"first name", and lastname/"last name" map onto the
// name, firstname, and lastname variables, with the spaced spelling winning
// when both appear.
func Extract(rows []Row) []recipient.Recipient {
	out := make([]recipient.Recipient, 0, len(rows))
	for _, row := range rows {
		emailCol := emailColumn(row.Columns)
		if emailCol == "" {
			continue
		}
		addr := strings.TrimSpace(row.Cells[emailCol])
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}

		vars := make(map[string]string)
		for col, val := range row.Cells {
			if col == emailCol {
				continue
			}
			val = strings.TrimSpace(val)
			if val == "" {
				continue
			}
			vars[normalizeKey(col)] = val
		}

		for _, alias := range []struct{ from, to string }{
			{"name", "name"},
			{"Name", "name"},
			{"firstname", "firstname"},
			{"first name", "firstname"},
			{"lastname", "lastname"},
			{"last name", "lastname"},
		} {
			if v := strings.TrimSpace(row.Cells[alias.from]); v != "" {
				vars[alias.to] = v
			}
		}

		out = append(out, recipient.Recipient{Email: addr, Variables: vars})
	}
	return out
}

// ExtractEmailsFrom returns the addresses held in the named column, skipping
// rows without a usable value there. An empty column name falls back to
// per-row discovery.
func ExtractEmailsFrom(rows []Row, column string) []string {
	if column == "" {
		return ExtractEmails(rows)
	}
	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		addr := strings.TrimSpace(row.Cells[column])
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}
		emails = append(emails, addr)
	}
	return emails
}

// ExtractEmails returns just the addresses, for callers that do not need
// personalization data.
func ExtractEmails(rows []Row) []string {
	recips := Extract(rows)
	emails := make([]string, 0, len(recips))
	for _, r := range recips {
		emails = append(emails, r.Email)
	}
	return emails
}
