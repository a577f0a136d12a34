// Package contracts defines the strict schemas bounding what a model
// response may contain at each protocol stage. Every object is closed
// (additionalProperties: false), every declared field is required, and
// optionality is expressed as anyOf [type, null] rather than omission, so
// the model cannot skip validation by leaving a field out.
package contracts

// BulletWire is one changelog bullet as emitted by the model. The
// evidence id list must be present even when empty; ids need not resolve,
// unknown ids are tolerated downstream.
type BulletWire struct {
	Text            string   `json:"text"`
	EvidenceNodeIDs []string `json:"evidenceNodeIds"`
}

// ChangelogWire is the final changelog model: six ordered bullet lists
// keyed by category.
type ChangelogWire struct {
	BreakingChanges []BulletWire `json:"breakingChanges"`
	Added           []BulletWire `json:"added"`
	Changed         []BulletWire `json:"changed"`
	Fixed           []BulletWire `json:"fixed"`
	Removed         []BulletWire `json:"removed"`
	InternalTooling []BulletWire `json:"internalTooling"`
}

// SnippetWire requests an exact line range of one file.
type SnippetWire struct {
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

// AroundWire requests lines surrounding one line of one file.
type AroundWire struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Context *int   `json:"context"`
}

// FileSearchWire requests matches of a query within one file.
type FileSearchWire struct {
	Path       string `json:"path"`
	Query      string `json:"query"`
	MaxResults *int   `json:"maxResults"`
}

// RepoSearchWire requests matches of a query across the repository.
type RepoSearchWire struct {
	Query      string    `json:"query"`
	MaxResults *int      `json:"maxResults"`
	MaxFiles   *int      `json:"maxFiles"`
	Extensions *[]string `json:"extensions"`
}

// PathSearchWire requests repository paths containing a substring.
type PathSearchWire struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"maxResults"`
}

// ListWire requests a directory listing.
type ListWire struct {
	Dir        *string `json:"dir"`
	MaxEntries *int    `json:"maxEntries"`
}

// StatWire requests metadata about one file.
type StatWire struct {
	Path string `json:"path"`
}

// ToolRequestWire is the per-round tool-request bundle. All request arrays
// are required (nullable but present) so absence is a schema violation,
// never an implicit default.
type ToolRequestWire struct {
	HunkIDs            []string         `json:"hunkIds"`
	FileSnippets       []SnippetWire    `json:"fileSnippets"`
	SnippetsAroundLine []AroundWire     `json:"snippetsAroundLine"`
	FileSearches       []FileSearchWire `json:"fileSearches"`
	RepoSearches       []RepoSearchWire `json:"repoSearches"`
	PathSearches       []PathSearchWire `json:"pathSearches"`
	ListFiles          []ListWire       `json:"listFiles"`
	FileStats          []StatWire       `json:"fileStats"`
	Done               bool             `json:"done"`
}

// ReleaseNotesWire is the model's release-notes output.
type ReleaseNotesWire struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	Highlights   []string `json:"highlights"`
	UpgradeNotes []string `json:"upgradeNotes"`
}

// VersionBumpWire is the model's version-bump decision.
type VersionBumpWire struct {
	Bump      string `json:"bump"` // major, minor, patch or none
	Rationale string `json:"rationale"`
}
