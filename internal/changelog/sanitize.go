package changelog

import (
	"regexp"
	"strings"

	"github.com/relforge/relforge/internal/evidence"
)

// Internal refactor bullets are often phrased as path announcements
// ("Updated src/foo.ts"). The heuristic is two-sided: an announcement verb
// plus an internal directory or source extension drops the bullet, unless
// it also mentions a user-facing artifact such as a build output path or
// the package manifest.
var (
	announcementRe = regexp.MustCompile(`(?i)^(added|removed|updated|modified)\b`)

	internalDirRe = regexp.MustCompile(`(?i)(^|[\s"'` + "`" + `(])(src|tests?|__tests__|scripts|ci|\.github|\.gitlab|\.circleci)/`)

	sourceExtRe = regexp.MustCompile(`(?i)\.(ts|tsx|js|jsx|mjs|cjs|go|py|rs|rb|java|kt|c|h|cc|cpp|hpp|cs|swift)\b`)

	allowedArtifactRe = regexp.MustCompile(`(?i)(dist/|build output|package\.json|cargo\.toml|pyproject\.toml|go\.mod|readme|changelog)`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// sanitizeBullet normalizes a bullet's text and decides whether it may
// appear in consumer-facing output. The empty string means drop.
func sanitizeBullet(b Bullet, index *evidence.Index) string {
	if !surfaceAllows(b, index) {
		return ""
	}
	text := normalizeText(b.Text)
	if text == "" {
		return ""
	}
	if isInternalPathAnnouncement(text) {
		return ""
	}
	return text
}

// surfaceAllows resolves the bullet's first evidence node id, when any,
// and rejects bullets whose primary node has an internal-only surface.
// Unresolvable ids are tolerated.
func surfaceAllows(b Bullet, index *evidence.Index) bool {
	if index == nil || len(b.EvidenceNodeIDs) == 0 {
		return true
	}
	node, ok := index.Node(b.EvidenceNodeIDs[0])
	if !ok {
		return true
	}
	return node.Surface.IsDisclosable()
}

// normalizeText trims and collapses internal whitespace runs to single
// spaces.
func normalizeText(text string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
}

func isInternalPathAnnouncement(text string) bool {
	if !announcementRe.MatchString(text) {
		return false
	}
	if !internalDirRe.MatchString(text) && !sourceExtRe.MatchString(text) {
		return false
	}
	return !allowedArtifactRe.MatchString(text)
}
