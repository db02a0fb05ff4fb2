package report

// DefaultMaxIssues is the cap applied when a Builder is created with a
// non-positive limit.
const DefaultMaxIssues = 500

// Builder accumulates Issues under a hard cap. Once the cap is hit, later
// issues are suppressed but counted, and severity bookkeeping stays exact:
// a suppressed error still makes the final report not-Ok.
type Builder struct {
	max        int
	issues     []Issue
	suppressed int
	errors     int
}

// NewBuilder returns a Builder capping the emitted issue list at maxIssues.
func NewBuilder(maxIssues int) *Builder {
	if maxIssues <= 0 {
		maxIssues = DefaultMaxIssues
	}

	return &Builder{max: maxIssues}
}

// Add records one issue, suppressing it when the cap is already reached.
func (b *Builder) Add(iss Issue) {
	if iss.Level == Error {
		b.errors++
	}
	if len(b.issues) >= b.max {
		b.suppressed++

		return
	}
	b.issues = append(b.issues, iss)
}

// AddAll records issues in order.
func (b *Builder) AddAll(issues []Issue) {
	for _, iss := range issues {
		b.Add(iss)
	}
}

// HasError reports whether any error-level issue was recorded, including
// suppressed ones.
func (b *Builder) HasError() bool { return b.errors > 0 }

// Len reports the number of emitted (non-suppressed) issues.
func (b *Builder) Len() int { return len(b.issues) }

// Remaining reports how many more issues fit under the cap.
func (b *Builder) Remaining() int { return b.max - len(b.issues) }

// Suppressed reports how many issues were dropped by the cap.
func (b *Builder) Suppressed() int { return b.suppressed }

// Issues returns the emitted issues in insertion order.
func (b *Builder) Issues() []Issue { return b.issues }

// Build assembles the final Report. The truncation record
// (issues_emitted / issues_suppressed) is merged into summary, and
// Ok reflects every recorded issue, suppressed or not.
func (b *Builder) Build(summary, parameters map[string]any) *Report {
	if summary == nil {
		summary = make(map[string]any)
	}
	summary["issues_emitted"] = len(b.issues)
	summary["issues_suppressed"] = b.suppressed
	summary["counts_by_level"] = CountByLevel(b.issues)
	summary["counts_by_code"] = CountByCode(b.issues)
	if parameters == nil {
		parameters = make(map[string]any)
	}
	issues := b.issues
	if issues == nil {
		issues = []Issue{}
	}

	return &Report{
		Ok:         !b.HasError(),
		Issues:     issues,
		Summary:    summary,
		Parameters: parameters,
	}
}
