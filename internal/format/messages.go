package format

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NoResultsMessage is sent when no post passes the filter.
const NoResultsMessage = "🤖 *Web3 Scan Results:* No new relevant project announcements found."

// HeaderMessage announces how many posts follow. since may be empty.
func HeaderMessage(accepted int, since string) string {
	if since == "" {
		return fmt.Sprintf("🚨 *New Web3 Project Announcements* 🚨\nFound %d potential launches.", accepted)
	}
	return fmt.Sprintf("🚨 *New Web3 Project Announcements* 🚨\nFound %d potential launches since %s.", accepted, since)
}

const failurePrefix = "❌ *Web3 X Scan Failed!* ❌\nError details: `"

// FailureMessage reports a failed scan. Backticks in the error text are
// replaced and the detail is cut so the code span stays closed within the
// message limit.
func FailureMessage(err error) string {
	detail := "unknown error"
	if err != nil {
		detail = strings.ReplaceAll(err.Error(), "`", "'")
	}
	room := DefaultMaxChars - utf8.RuneCountInString(failurePrefix) - 1
	return failurePrefix + Truncate(detail, room) + "`"
}
