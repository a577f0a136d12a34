package contracts

import (
	"fmt"

	"github.com/relforge/relforge/internal/jsonx"
)

// SchemaViolationError reports a final structured output that does not
// satisfy its contract. It is fatal: the run cannot proceed without a
// valid model, and the violation is attributable to a single field.
type SchemaViolationError struct {
	Contract string
	Field    string
	Reason   string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation in %s at %s: %s", e.Contract, e.Field, e.Reason)
}

func violation(contract, field, reason string) *SchemaViolationError {
	return &SchemaViolationError{Contract: contract, Field: field, Reason: reason}
}

var changelogCategories = []string{
	"breakingChanges", "added", "changed", "fixed", "removed", "internalTooling",
}

// DecodeChangelog extracts and strictly validates the final changelog
// model from raw model text. Every category must be present, every bullet
// must carry both text and an evidenceNodeIds array.
func DecodeChangelog(text string) (*ChangelogWire, error) {
	m, err := jsonx.Extract[map[string]any]("changelog_model", text)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(changelogCategories))
	for _, c := range changelogCategories {
		known[c] = true
	}
	for key := range m {
		if !known[key] {
			return nil, violation("changelog_model", key, "undeclared property")
		}
	}

	out := &ChangelogWire{}
	targets := map[string]*[]BulletWire{
		"breakingChanges": &out.BreakingChanges,
		"added":           &out.Added,
		"changed":         &out.Changed,
		"fixed":           &out.Fixed,
		"removed":         &out.Removed,
		"internalTooling": &out.InternalTooling,
	}
	for _, cat := range changelogCategories {
		raw, present := m[cat]
		if !present {
			return nil, violation("changelog_model", cat, "required category missing")
		}
		bullets, err := decodeBullets(cat, raw)
		if err != nil {
			return nil, err
		}
		*targets[cat] = bullets
	}
	return out, nil
}

func decodeBullets(category string, raw any) ([]BulletWire, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, violation("changelog_model", category, "not an array")
	}
	out := make([]BulletWire, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("%s[%d]", category, i)
		bm, ok := item.(map[string]any)
		if !ok {
			return nil, violation("changelog_model", field, "bullet is not an object")
		}
		text, ok := bm["text"].(string)
		if !ok {
			return nil, violation("changelog_model", field+".text", "missing or not a string")
		}
		idsRaw, present := bm["evidenceNodeIds"]
		if !present {
			return nil, violation("changelog_model", field+".evidenceNodeIds", "required field missing")
		}
		idItems, ok := idsRaw.([]any)
		if !ok {
			return nil, violation("changelog_model", field+".evidenceNodeIds", "not an array")
		}
		ids := make([]string, 0, len(idItems))
		for _, v := range idItems {
			if s, ok := v.(string); ok {
				ids = append(ids, s)
			}
		}
		out = append(out, BulletWire{Text: text, EvidenceNodeIDs: ids})
	}
	return out, nil
}

// DecodeReleaseNotes extracts and validates release-notes output.
func DecodeReleaseNotes(text string) (*ReleaseNotesWire, error) {
	m, err := jsonx.Extract[map[string]any]("release_notes", text)
	if err != nil {
		return nil, err
	}
	out := &ReleaseNotesWire{}
	if out.Title, err = requireString(m, "release_notes", "title"); err != nil {
		return nil, err
	}
	if out.Summary, err = requireString(m, "release_notes", "summary"); err != nil {
		return nil, err
	}
	if out.Highlights, err = requireStringArray(m, "release_notes", "highlights"); err != nil {
		return nil, err
	}
	if out.UpgradeNotes, err = requireStringArray(m, "release_notes", "upgradeNotes"); err != nil {
		return nil, err
	}
	return out, nil
}

var validBumps = map[string]bool{"major": true, "minor": true, "patch": true, "none": true}

// DecodeVersionBump extracts and validates the version-bump decision.
func DecodeVersionBump(text string) (*VersionBumpWire, error) {
	m, err := jsonx.Extract[map[string]any]("version_bump", text)
	if err != nil {
		return nil, err
	}
	out := &VersionBumpWire{}
	if out.Bump, err = requireString(m, "version_bump", "bump"); err != nil {
		return nil, err
	}
	if !validBumps[out.Bump] {
		return nil, violation("version_bump", "bump", "must be one of major, minor, patch, none")
	}
	if out.Rationale, err = requireString(m, "version_bump", "rationale"); err != nil {
		return nil, err
	}
	return out, nil
}

func requireString(m map[string]any, contract, field string) (string, error) {
	v, present := m[field]
	if !present {
		return "", violation(contract, field, "required field missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", violation(contract, field, "not a string")
	}
	return s, nil
}

func requireStringArray(m map[string]any, contract, field string) ([]string, error) {
	v, present := m[field]
	if !present {
		return nil, violation(contract, field, "required field missing")
	}
	items, ok := v.([]any)
	if !ok {
		return nil, violation(contract, field, "not an array")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, violation(contract, fmt.Sprintf("%s[%d]", field, i), "not a string")
		}
		out = append(out, s)
	}
	return out, nil
}
