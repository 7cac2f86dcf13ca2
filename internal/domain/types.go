package domain

const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusDeleted  = "deleted"
	FileStatusRenamed  = "renamed"
)

// Action selects which pipeline runs for a pull request.
type Action string

const (
	// ActionReview posts inline review comments for code issues.
	ActionReview Action = "review"
	// ActionNaming posts inline suggestions for identifier naming.
	ActionNaming Action = "naming"
	// ActionSummary posts a single summary comment on the PR.
	ActionSummary Action = "summary"
)

// PRDetails identifies the pull request under review.
// Read once from the event payload and one API call; immutable for the run.
type PRDetails struct {
	Owner       string
	Repo        string
	PullNumber  int
	Title       string
	Description string
	HeadSHA     string
}

// LineType represents the kind of change a diff line records.
type LineType int

const (
	// LineContext is an unchanged line (prefix ' ').
	LineContext LineType = iota
	// LineAddition is an added line (prefix '+').
	LineAddition
	// LineDeletion is a removed line (prefix '-').
	LineDeletion
)

// LineChange is a single line inside a hunk.
type LineChange struct {
	Type    LineType
	Content string // line content without the prefix character
	NewLine *int   // line number in the new file, nil for deletions
	// Position is the 1-indexed offset from the file's first @@ header,
	// the coordinate GitHub uses for inline review comments.
	Position int
}

// Hunk is one @@ block of a unified diff.
type Hunk struct {
	Header   string // the raw @@ line, including any trailing context
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []LineChange
}

// FileDiff captures the change for a single file.
type FileDiff struct {
	Path   string
	Status string
	Hunks  []Hunk
}

// Diff is the full change set for one run.
type Diff struct {
	BaseSHA string
	HeadSHA string
	Files   []FileDiff
}

// Suggestion is one structured entry extracted from the model reply.
type Suggestion struct {
	Path string
	Line int
	Body string
}

// Review is the output of one model call.
type Review struct {
	ProviderName string
	ModelName    string
	Summary      string
	Suggestions  []Suggestion
}

// ReviewComment is the unit posted back to the PR.
type ReviewComment struct {
	Path string
	Line int
	Body string
}
