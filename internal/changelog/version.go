package changelog

import (
	"regexp"
	"strings"
)

var (
	commitHashRe = regexp.MustCompile(`^[0-9a-f]{7,40}$`)
	semverRe     = regexp.MustCompile(`^v\d+\.\d+\.\d+(-[0-9A-Za-z.\-]+)?(\+[0-9A-Za-z.\-]+)?$`)
)

// NormalizeVersionLabel maps a raw version label to its changelog heading
// form. Blank labels, HEAD, and bare commit hashes (7-40 hex characters)
// become Unreleased; a leading v on a semantic version is stripped
// (v1.2.3 becomes 1.2.3); anything else passes through verbatim.
func NormalizeVersionLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" || label == "HEAD" || commitHashRe.MatchString(label) {
		return "Unreleased"
	}
	if semverRe.MatchString(label) {
		return label[1:]
	}
	return label
}
