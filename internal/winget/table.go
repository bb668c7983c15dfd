package winget

import (
	"bufio"
	"strings"
)

// parseUpgradeTable parses the human-readable `winget upgrade` table:
//
//	Name            Id                  Version   Available  Source
//	---------------------------------------------------------------
//	Mozilla Firefox Mozilla.Firefox     128.0     129.0      winget
//
// Columns are sliced at the start offsets taken from the header row, not by
// whitespace, because display names contain spaces. A display name wide
// enough to push later columns past their header offsets produces an id
// slice that fails validation; such rows are rejected rather than
// mis-parsed.
func parseUpgradeTable(output string) []UpgradeCandidate {
	cols := findColumnOffsets(output)
	if cols == nil {
		return nil
	}

	var cands []UpgradeCandidate
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(output))
	pastSeparator := false

	for scanner.Scan() {
		line := scanner.Text()

		if !pastSeparator {
			if isSeparatorLine(line) {
				pastSeparator = true
			}
			continue
		}

		if strings.TrimSpace(line) == "" {
			continue
		}
		if isFooterLine(line) {
			continue
		}

		cand, ok := sliceUpgradeRow(line, cols)
		if !ok {
			log.Warn("skipping unparseable listing row", "row", strings.TrimSpace(line))
			continue
		}
		if _, dup := seen[cand.ID]; dup {
			continue
		}
		seen[cand.ID] = struct{}{}
		cands = append(cands, cand)
	}

	return cands
}

// columnOffsets holds the start positions of the winget table columns.
// source is -1 when the column is absent.
type columnOffsets struct {
	name      int
	id        int
	version   int
	available int
	source    int
}

// findColumnOffsets locates the header row by column-name match and records
// each column's start offset.
func findColumnOffsets(output string) *columnOffsets {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		nameIdx := strings.Index(line, "Name")
		idIdx := strings.Index(line, "Id")
		versionIdx := strings.Index(line, "Version")
		availIdx := strings.Index(line, "Available")
		if nameIdx == -1 || idIdx == -1 || versionIdx == -1 || availIdx == -1 {
			continue
		}
		// Header column order is fixed; anything else is not the header.
		if idIdx <= nameIdx || versionIdx <= idIdx || availIdx <= versionIdx {
			continue
		}

		cols := &columnOffsets{
			name:      nameIdx,
			id:        idIdx,
			version:   versionIdx,
			available: availIdx,
			source:    -1,
		}
		if srcIdx := strings.Index(line, "Source"); srcIdx > availIdx {
			cols.source = srcIdx
		}
		return cols
	}
	return nil
}

// isSeparatorLine reports whether the line is the dashes row under the header.
func isSeparatorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 10 {
		return false
	}
	for _, ch := range trimmed {
		if ch != '-' && ch != ' ' {
			return false
		}
	}
	return true
}

// isFooterLine matches the summary-count and no-result rows winget appends
// after the data rows.
func isFooterLine(line string) bool {
	return strings.Contains(line, " upgrades available") ||
		strings.Contains(line, " upgrade available") ||
		strings.Contains(line, "No installed package") ||
		strings.Contains(line, "No applicable update") ||
		strings.Contains(line, "require explicit targeting")
}

// sliceUpgradeRow cuts one data row at the header offsets. ok is false when
// the id slice is not a valid package identifier, which covers both footer
// noise and rows misaligned by an over-wide display name.
func sliceUpgradeRow(line string, cols *columnOffsets) (UpgradeCandidate, bool) {
	if len(line) <= cols.id {
		return UpgradeCandidate{}, false
	}

	end := len(line)
	availEnd := end
	if cols.source > 0 {
		availEnd = cols.source
	}

	cand := UpgradeCandidate{
		Name:             sliceColumn(line, cols.name, cols.id),
		ID:               sliceColumn(line, cols.id, cols.version),
		InstalledVersion: sliceColumn(line, cols.version, cols.available),
		AvailableVersion: sliceColumn(line, cols.available, availEnd),
	}
	if cols.source > 0 {
		cand.Source = sliceColumn(line, cols.source, end)
	}

	if cand.ID == "" || !validPackageID.MatchString(cand.ID) {
		return UpgradeCandidate{}, false
	}
	return cand, true
}

// sliceColumn extracts a column with bounds checking and trims whitespace.
func sliceColumn(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}
	return strings.TrimSpace(s[start:end])
}
