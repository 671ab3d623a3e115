// Package notify drafts provider outreach from a completed validation run.
package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sells-group/provdir/internal/model"
)

// deadlineDays is the response window by priority, counted from the run's
// as-of date.
var deadlineDays = map[model.Priority]int{
	model.PriorityCritical: 2,
	model.PriorityHigh:     7,
	model.PriorityMedium:   14,
	model.PriorityLow:      30,
}

// priorityBases seed the outreach score.
var priorityBases = map[model.Priority]float64{
	model.PriorityCritical: 100,
	model.PriorityHigh:     75,
	model.PriorityMedium:   50,
	model.PriorityLow:      25,
}

// channels recommend how to reach the provider at each priority.
var channels = map[model.Priority]string{
	model.PriorityCritical: "Immediate phone outreach recommended",
	model.PriorityHigh:     "Email with phone follow-up",
	model.PriorityMedium:   "Standard email notification",
	model.PriorityLow:      "Batch email notification",
}

// Reminder is one scheduled follow-up, in days after the first contact.
type Reminder struct {
	Day     int    `json:"day"`
	Channel string `json:"channel"`
}

var reminderSchedules = map[model.Priority][]Reminder{
	model.PriorityCritical: {{Day: 1, Channel: "email"}, {Day: 2, Channel: "phone"}},
	model.PriorityHigh:     {{Day: 3, Channel: "email"}, {Day: 5, Channel: "email"}, {Day: 7, Channel: "phone"}},
	model.PriorityMedium:   {{Day: 7, Channel: "email"}, {Day: 14, Channel: "email"}},
	model.PriorityLow:      {{Day: 14, Channel: "email"}},
}

type template struct {
	subject  string
	greeting string
	intro    string
	action   string
}

var templates = map[model.Priority]template{
	model.PriorityCritical: {
		subject:  "URGENT: Critical Data Issues Require Immediate Attention",
		greeting: "Dear %s,",
		intro:    "We are contacting you regarding critical discrepancies found in your provider directory listing that require immediate attention.",
		action:   "Please update your information within 48 hours to maintain your active status in our network.",
	},
	model.PriorityHigh: {
		subject:  "Important: Provider Data Updates Required",
		greeting: "Dear %s,",
		intro:    "During our routine directory validation process, we identified some updates needed for your provider profile.",
		action:   "We kindly request that you review and update your information within the next 7 days.",
	},
	model.PriorityMedium: {
		subject:  "Provider Directory Update Request",
		greeting: "Hello %s,",
		intro:    "We're reaching out to verify your current practice information in our healthcare provider directory.",
		action:   "When you have a moment, please review your listing and confirm or update your information.",
	},
	model.PriorityLow: {
		subject:  "Routine Provider Information Verification",
		greeting: "Hello %s,",
		intro:    "We're reaching out to verify your current practice information in our healthcare provider directory.",
		action:   "When you have a moment, please review your listing and confirm or update your information.",
	},
}

var issueDescriptions = map[model.IssueCode]string{
	model.IssueInvalidPhoneFormat: "Phone number is not a valid ten digit US number",
	model.IssuePlaceholderPhone:   "Phone number on file appears to be a placeholder",
	model.IssueOutdatedAddress:    "Practice address may be outdated",
	model.IssueIncompleteAddress:  "Practice address is missing street or locality detail",
	model.IssueLicenseExpired:     "Medical license on file is expired",
	model.IssueLicenseUnknown:     "Medical license status could not be verified",
	model.IssueNPINameMismatch:    "Provider name does not match the NPI registry",
	model.IssueStaleData:          "Directory information has not been verified recently",
	model.IssueProcessingError:    "The record could not be processed",
}

// Draft is one prepared outreach email for a flagged provider.
type Draft struct {
	RecordID         string         `json:"record_id"`
	ProviderName     string         `json:"provider_name"`
	Priority         model.Priority `json:"priority"`
	Subject          string         `json:"subject"`
	Body             string         `json:"body"`
	Issues           []string       `json:"issues"`
	OutreachScore    float64        `json:"outreach_score"`
	QueuePosition    int            `json:"queue_position"`
	ResponseDeadline time.Time      `json:"response_deadline"`
	Channel          string         `json:"channel"`
	Reminders        []Reminder     `json:"reminders"`
}

// Summary condenses a draft batch for display.
type Summary struct {
	TotalDrafts int                    `json:"total_drafts"`
	ByPriority  map[model.Priority]int `json:"by_priority"`
}

// Build prepares one outreach draft per result that needs review, ordered
// by outreach score descending then record id.
func Build(doc *model.RunDocument) []Draft {
	var drafts []Draft
	for i := range doc.Results {
		res := &doc.Results[i]
		if res.Priority == model.PriorityNone {
			continue
		}
		rec := doc.RecordByID(res.RecordID)
		if rec == nil {
			continue
		}
		drafts = append(drafts, newDraft(rec, res, doc.AsOf))
	}

	sort.Slice(drafts, func(i, j int) bool {
		if drafts[i].OutreachScore != drafts[j].OutreachScore {
			return drafts[i].OutreachScore > drafts[j].OutreachScore
		}
		return drafts[i].RecordID < drafts[j].RecordID
	})
	for i := range drafts {
		drafts[i].QueuePosition = i + 1
	}
	return drafts
}

// Score ranks outreach urgency: the priority base, five points per finding,
// and half the quality shortfall.
func Score(res *model.ValidationResult) float64 {
	return priorityBases[res.Priority] +
		5*float64(len(res.Findings)) +
		0.5*float64(100-res.QualityScore)
}

// Summarize tallies a draft batch by priority.
func Summarize(drafts []Draft) Summary {
	s := Summary{TotalDrafts: len(drafts), ByPriority: make(map[model.Priority]int)}
	for _, d := range drafts {
		s.ByPriority[d.Priority]++
	}
	return s
}

// Describe returns the plain-language description for an issue code.
func Describe(code model.IssueCode) string {
	if d, ok := issueDescriptions[code]; ok {
		return d
	}
	return strings.ReplaceAll(string(code), "_", " ")
}

func newDraft(rec *model.ProviderRecord, res *model.ValidationResult, asOf time.Time) Draft {
	tpl, ok := templates[res.Priority]
	if !ok {
		tpl = templates[model.PriorityMedium]
	}
	issues := describeFindings(res.Findings)

	return Draft{
		RecordID:         res.RecordID,
		ProviderName:     rec.Name,
		Priority:         res.Priority,
		Subject:          tpl.subject,
		Body:             emailBody(tpl, rec, issues),
		Issues:           issues,
		OutreachScore:    Score(res),
		ResponseDeadline: asOf.AddDate(0, 0, deadlineDays[res.Priority]),
		Channel:          channels[res.Priority],
		Reminders:        append([]Reminder(nil), reminderSchedules[res.Priority]...),
	}
}

func describeFindings(findings []model.Finding) []string {
	issues := make([]string, 0, len(findings))
	seen := make(map[string]bool)
	for _, f := range findings {
		desc := Describe(f.IssueCode)
		if f.IssueCode == model.IssueFieldUnparseable {
			desc = fmt.Sprintf("The %s field could not be read", f.Field)
		}
		if seen[desc] {
			continue
		}
		seen[desc] = true
		issues = append(issues, desc)
	}
	return issues
}

func emailBody(tpl template, rec *model.ProviderRecord, issues []string) string {
	name := rec.Name
	if name == "" {
		name = "Provider"
	}

	var b strings.Builder
	fmt.Fprintf(&b, tpl.greeting+"\n\n", name)
	b.WriteString(tpl.intro + "\n\n")

	b.WriteString("The following items require your attention:\n")
	if len(issues) == 0 {
		b.WriteString("  - No specific issues identified.\n")
	}
	for _, issue := range issues {
		fmt.Fprintf(&b, "  - %s\n", issue)
	}

	b.WriteString("\n" + tpl.action + "\n\n")

	b.WriteString("Your current information on file:\n")
	fmt.Fprintf(&b, "  Specialty: %s\n", orNA(rec.Specialty))
	fmt.Fprintf(&b, "  Address: %s\n", orNA(rec.Address))
	fmt.Fprintf(&b, "  Phone: %s\n", orNA(rec.Phone))
	fmt.Fprintf(&b, "  NPI: %s\n", orNA(rec.NPI))

	b.WriteString("\nTo update your information:\n")
	b.WriteString("  1. Log in to the provider portal\n")
	b.WriteString("  2. Navigate to \"My Profile\"\n")
	b.WriteString("  3. Update the flagged fields\n")
	b.WriteString("  4. Submit for verification\n\n")

	b.WriteString("If you have any questions, please contact our Provider Relations team.\n\n")
	b.WriteString("Thank you for your prompt attention to this matter.\n\n")
	b.WriteString("Best regards,\nProvider Directory Management Team\n")
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
