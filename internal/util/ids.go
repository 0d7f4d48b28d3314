// Package util provides identifier generation for tickets and report artifacts.
package util

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TicketProtocolPrefix prefixes every support-ticket protocol number.
const TicketProtocolPrefix = "TICKET"

// GenerateProtocolID generates a timestamped support-ticket protocol number,
// e.g. "TICKET-20250114153045-9f86d081". The UUID suffix disambiguates
// tickets opened within the same second.
func GenerateProtocolID(now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", TicketProtocolPrefix, now.Format("20060102150405"), uuid.NewString()[:8])
}

// GenerateReportFileName generates a timestamped PDF file name for a job
// report. Repeated invocations for the same job yield distinct names so that
// report generation stays idempotent per invocation.
func GenerateReportFileName(jobName string, now time.Time) string {
	return fmt.Sprintf("relatorio_%s_%s_%s.pdf", SlugifyJobName(jobName), now.Format("20060102150405"), uuid.NewString()[:8])
}

// SlugifyJobName lowercases a job name and replaces spaces with underscores
// for use in file names.
func SlugifyJobName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r == ' ' || r == '/':
			out = append(out, '_')
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
