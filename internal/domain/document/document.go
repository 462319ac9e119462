package document

import (
	"errors"
	"strings"
)

// ErrNotFound is returned for an unknown document ID.
var ErrNotFound = errors.New("document not found")

// Document is an academy form or policy stored as markdown.
type Document struct {
	ID       int
	Title    string
	Summary  string
	Color    string
	Markdown string
}

var registry = []Document{
	{
		ID:      1,
		Title:   "Player Registration Form",
		Summary: "Complete before the first training session.",
		Color:   "blue",
		Markdown: `### Dribble Ground Academy - Player Registration

#### Personal Information
- **Full Name:** [Player Name]
- **Date of Birth:** [DD/MM/YYYY]
- **Age:** [Age] years
- **Gender:** [Male/Female/Other]

#### Important Notes
- This form must be completed before first training session
- Medical clearance required for pre-existing conditions
- Parent signature mandatory for players under 18
`,
	},
	{
		ID:      2,
		Title:   "Payment Receipt",
		Summary: "Issued once the admin verifies your payment.",
		Color:   "green",
		Markdown: `### Official Payment Receipt

**Payment Confirmed**

Your payment has been verified. Training access is now active.
`,
	},
	{
		ID:      3,
		Title:   "Medical Fitness Certificate",
		Summary: "Physician clearance for every player.",
		Color:   "red",
		Markdown: `### Medical Fitness Certificate

Medical clearance from a registered physician is required for all players.
`,
	},
	{
		ID:      4,
		Title:   "Indemnity & Waiver Form",
		Summary: "Acknowledge the risks of training.",
		Color:   "purple",
		Markdown: `### Liability Waiver & Indemnity Form

All participants must acknowledge the risks associated with basketball training.
`,
	},
	{
		ID:      5,
		Title:   "Code of Conduct",
		Summary: "How we train together.",
		Color:   "orange",
		Markdown: `### Academy Code of Conduct

- Punctuality: Arrive 10 minutes before training
- Respect coaches and fellow players
- Fair play and good sportsmanship
- Take care of academy equipment
`,
	},
	{
		ID:      6,
		Title:   "Training Schedule",
		Summary: "Weekly session times.",
		Color:   "cyan",
		Markdown: `### Training Schedule

**Days:** Monday to Saturday

**Time:** 9:00 AM - 6:00 PM

**Rest:** Sundays
`,
	},
}

// List returns every document in display order.
func List() []Document {
	out := make([]Document, len(registry))
	copy(out, registry)
	return out
}

// Get returns the document with the given ID.
// PRE: none
// POST: Returns ErrNotFound for unknown IDs
func Get(id int) (Document, error) {
	for _, d := range registry {
		if d.ID == id {
			return d, nil
		}
	}
	return Document{}, ErrNotFound
}

// Search returns documents whose title contains q, case-insensitively.
func Search(q string) []Document {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return List()
	}
	var out []Document
	for _, d := range registry {
		if strings.Contains(strings.ToLower(d.Title), q) {
			out = append(out, d)
		}
	}
	return out
}
