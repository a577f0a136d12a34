package changelog

import (
	"fmt"
	"io"
	"strings"
)

// RenderOptions controls the rendered document heading.
type RenderOptions struct {
	// VersionLabel is normalized before rendering: blank, HEAD, or a bare
	// commit hash becomes Unreleased; a leading v on a semantic version is
	// stripped; anything else passes through verbatim.
	VersionLabel string
	// ReleaseDateISO is the release date in YYYY-MM-DD form; empty omits
	// the date from the heading.
	ReleaseDateISO string
}

// RenderMarkdown generates a Keep a Changelog style document from the
// model. Bullets are sanitized per category; empty sections are dropped
// entirely rather than emitted empty. The function is idempotent: the same
// model renders to byte-identical output.
func RenderMarkdown(m *Model, opts RenderOptions, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n", formatHeading(opts)); err != nil {
		return err
	}

	breaking := sanitizeAll(m.BreakingChanges, m)
	added := sanitizeAll(m.Added, m)
	changed := sanitizeAll(m.Changed, m)
	fixed := sanitizeAll(m.Fixed, m)
	removed := sanitizeAll(m.Removed, m)

	// Breaking changes render bold-prefixed ahead of ordinary changed
	// bullets, merged into the Changed section.
	merged := make([]string, 0, len(breaking)+len(changed))
	for _, text := range breaking {
		merged = append(merged, "**BREAKING:** "+text)
	}
	merged = append(merged, changed...)

	sections := []struct {
		name    string
		bullets []string
	}{
		{"Added", added},
		{"Changed", merged},
		{"Fixed", fixed},
		{"Removed", removed},
	}
	for _, sec := range sections {
		if len(sec.bullets) == 0 {
			continue
		}
		if err := renderSection(sec.name, sec.bullets, w); err != nil {
			return err
		}
	}
	return nil
}

// RenderMarkdownString is a convenience wrapper rendering to a string.
func RenderMarkdownString(m *Model, opts RenderOptions) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(m, opts, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func sanitizeAll(bullets []Bullet, m *Model) []string {
	out := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if text := sanitizeBullet(b, m.Index); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func formatHeading(opts RenderOptions) string {
	version := NormalizeVersionLabel(opts.VersionLabel)
	if opts.ReleaseDateISO == "" {
		return fmt.Sprintf("## [%s]", version)
	}
	return fmt.Sprintf("## [%s] - %s", version, opts.ReleaseDateISO)
}

func renderSection(name string, bullets []string, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\n### %s\n", name); err != nil {
		return err
	}
	for _, text := range bullets {
		if _, err := fmt.Fprintf(w, "- %s\n", text); err != nil {
			return err
		}
	}
	return nil
}
