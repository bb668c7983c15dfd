package winget

import (
	"strings"
)

// ListUpgrades queries winget for pending upgrades. It never returns an
// error: listing problems are logged as warnings and degrade to the table
// fallback, then to an empty result. Zero candidates means nothing to do.
// source, when non-empty, restricts the listing to that winget source.
func (c *Client) ListUpgrades(source string) []UpgradeCandidate {
	args := []string{
		"upgrade",
		"--include-unknown",
		"--accept-source-agreements",
		"--disable-interactivity",
	}
	if source != "" {
		args = append(args, "--source", source)
	}

	stdout, stderr, exitCode, err := c.exec(c.bin, append(args, "--output", "json"))
	if err != nil {
		log.Warn("winget not reachable, skipping structured listing", "error", err)
	} else if exitCode != 0 && stdout == "" {
		log.Warn("structured listing failed", "exitCode", exitCode, "stderr", strings.TrimSpace(stderr))
	} else if cands := parseStructuredUpgrades(stdout); len(cands) > 0 {
		return cands
	}

	// Fall back to the human-readable table. Older winget builds have no
	// structured output for the upgrade listing at all.
	stdout, stderr, exitCode, err = c.exec(c.bin, args)
	if err != nil {
		log.Warn("winget not reachable, no upgrades listed", "error", err)
		return nil
	}
	if exitCode != 0 && stdout == "" {
		log.Warn("upgrade listing failed", "exitCode", exitCode, "stderr", strings.TrimSpace(stderr))
		return nil
	}

	return parseUpgradeTable(stdout)
}

// parseStructuredUpgrades extracts candidates from JSON listing output.
// winget prints progress spinners and source-agreement notices before the
// payload, so parsing starts at the first structural delimiter.
func parseStructuredUpgrades(output string) []UpgradeCandidate {
	payload := structuredPayload(output)
	if payload == "" {
		return nil
	}

	root, err := parseJSONTree(payload)
	if err != nil {
		log.Warn("structured listing did not parse", "error", err)
		return nil
	}

	var cands []UpgradeCandidate
	seen := make(map[string]struct{})
	collectCandidates(root, "", seen, &cands)
	return cands
}

// structuredPayload strips any preamble before the JSON document.
func structuredPayload(output string) string {
	idx := strings.IndexAny(output, "{[")
	if idx < 0 {
		return ""
	}
	return output[idx:]
}

// Field aliases for the heterogeneous record schemas winget emits. The
// upgrade listing nests packages inside per-source wrappers; export-format
// documents use different key casings again.
var (
	idAliases        = []string{"PackageIdentifier", "Id", "id", "PackageId"}
	nameAliases      = []string{"PackageName", "Name", "name"}
	installedAliases = []string{"InstalledVersion", "Version", "version"}
	availableAliases = []string{"AvailableVersion", "Available", "available"}
	sourceAliases    = []string{"Source", "SourceName", "source"}
)

// collectCandidates walks the parsed tree in document order, emitting one
// candidate per node that exposes an identifier field. Duplicate ids keep
// the first occurrence. source is inherited from the nearest enclosing node
// that declares one.
func collectCandidates(node *jsonNode, source string, seen map[string]struct{}, out *[]UpgradeCandidate) {
	switch node.kind {
	case nodeArray:
		for _, item := range node.items {
			collectCandidates(item, source, seen, out)
		}

	case nodeObject:
		src := source
		if details := node.field("SourceDetails"); details != nil && details.kind == nodeObject {
			if s := details.stringField(nameAliases); s != "" {
				src = s
			}
		} else if s := node.stringField(sourceAliases); s != "" {
			src = s
		}

		if id := node.stringField(idAliases); id != "" && validPackageID.MatchString(id) {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				*out = append(*out, UpgradeCandidate{
					Name:             node.stringField(nameAliases),
					ID:               id,
					InstalledVersion: node.stringField(installedAliases),
					AvailableVersion: node.stringField(availableAliases),
					Source:           src,
				})
			}
		}

		for _, f := range node.fields {
			collectCandidates(f.value, src, seen, out)
		}
	}
}
