package protocol

import (
	"fmt"

	"github.com/relforge/relforge/internal/evidence"
)

const evidenceLegend = `Each line of the change index is:
id|changeType|surface|filePath|oldPath|binaryFlag|hunkIds

Request evidence with the tool-request JSON object. Every field must be
present; use empty arrays for request kinds you do not need. Set "done"
to true once you have enough evidence.`

const redactedLegend = `Each line of the change index is:
id|changeType|surface|basenameHint|binaryFlag|hunkCount`

func changelogSystemPrompt(index *evidence.Index) string {
	return fmt.Sprintf(`You are writing release notes for a software project.
You will be shown an index of file-level changes between two revisions.
Request diff hunks and repository context until you can describe every
user-visible change, then emit the changelog model.

%s

Change index (%d files):
%s`, evidenceLegend, index.Len(), index.RenderPrompt())
}

const changelogFinalPrompt = `Emit the final changelog model now as a JSON
object with the categories breakingChanges, added, changed, fixed, removed
and internalTooling. Every bullet must cite the evidence node ids it is
based on in evidenceNodeIds. Do not emit any other text.`

func releaseNotesSystemPrompt(index *evidence.Index) string {
	return fmt.Sprintf(`You are summarizing a release for end users. The
change index below is redacted: describe what changed for users, never
mention file paths or internal structure.

%s

Change index (%d files):
%s`, redactedLegend, index.Len(), index.RenderRedacted())
}

const releaseNotesFinalPrompt = `Emit the release notes now as a JSON object
with title, summary, highlights and upgradeNotes. Do not emit any other
text.`

func versionBumpPrompt(index *evidence.Index) string {
	return fmt.Sprintf(`Decide the semantic version bump for a release with
the following redacted change index. Answer as a JSON object with "bump"
(major, minor, patch or none) and "rationale".

%s

Change index (%d files):
%s`, redactedLegend, index.Len(), index.RenderRedacted())
}
