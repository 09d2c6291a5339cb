package query

import (
	"strings"

	"github.com/Moontok/WorkshopApp/internal/workshop"
)

const (
	// EmailSeparator joins addresses so they paste straight into a mail client
	EmailSeparator = ";\n"

	// NoEmailsSentinel is shown instead of an empty address list
	NoEmailsSentinel = "*** NO EMAILS TO DISPLAY! ***"
)

// EmailsFor joins the participant emails of every workshop in order.
// It returns NoEmailsSentinel, never an empty string, when there are none.
func EmailsFor(workshops []*workshop.Workshop) string {
	var emails []string
	for _, w := range workshops {
		emails = append(emails, w.Emails()...)
	}
	if len(emails) == 0 {
		return NoEmailsSentinel
	}
	return strings.Join(emails, EmailSeparator)
}
