package diff

import (
	"strconv"
	"strings"

	"github.com/njohnstone/prreview/internal/domain"
)

// ParseFiles parses a multi-file unified diff, as returned by the GitHub
// diff media type or git diff, into per-file change records.
// Unparseable sections are omitted; an empty input yields no files.
func ParseFiles(raw string) []domain.FileDiff {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var files []domain.FileDiff
	for _, section := range splitFileSections(raw) {
		file, ok := parseFileSection(section)
		if !ok {
			continue
		}
		files = append(files, file)
	}
	return files
}

// splitFileSections breaks a raw diff into one chunk per "diff --git" header.
// Content before the first header is kept as its own chunk so bare patches
// (no git headers) still parse.
func splitFileSections(raw string) [][]string {
	lines := strings.Split(raw, "\n")
	// Drop the empty element the final newline produces, and only that
	// one: empty lines inside a hunk are content and must keep counting.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var sections [][]string
	var current []string
	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			if len(current) > 0 {
				sections = append(sections, current)
			}
			current = []string{line}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		sections = append(sections, current)
	}
	return sections
}

// parseFileSection parses one file's worth of diff lines.
// Returns ok=false when no target path can be determined.
func parseFileSection(lines []string) (domain.FileDiff, bool) {
	file := domain.FileDiff{Status: domain.FileStatusModified}

	var oldPath string
	var currentHunk *domain.Hunk
	position := 0
	sawHunk := false
	currentNewLine := 0

	flush := func() {
		if currentHunk != nil {
			file.Hunks = append(file.Hunks, *currentHunk)
			currentHunk = nil
		}
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			if path, ok := pathFromGitHeader(line); ok && file.Path == "" {
				file.Path = path
			}
			continue
		case strings.HasPrefix(line, "new file mode"):
			file.Status = domain.FileStatusAdded
			continue
		case strings.HasPrefix(line, "deleted file mode"):
			file.Status = domain.FileStatusDeleted
			continue
		case strings.HasPrefix(line, "rename to "):
			file.Status = domain.FileStatusRenamed
			file.Path = strings.TrimPrefix(line, "rename to ")
			continue
		case strings.HasPrefix(line, "rename from "), strings.HasPrefix(line, "similarity index"),
			strings.HasPrefix(line, "index "), strings.HasPrefix(line, "old mode"),
			strings.HasPrefix(line, "new mode"), strings.HasPrefix(line, "Binary files"):
			continue
		case strings.HasPrefix(line, "--- "):
			oldPath = stripPathPrefix(strings.TrimPrefix(line, "--- "))
			continue
		case strings.HasPrefix(line, "+++ "):
			target := stripPathPrefix(strings.TrimPrefix(line, "+++ "))
			if target == "" {
				// Deleted file: keep the old path so exclusions still apply.
				file.Status = domain.FileStatusDeleted
				file.Path = oldPath
			} else {
				file.Path = target
			}
			continue
		case strings.HasPrefix(line, "\\ "):
			// "\ No newline at end of file"
			continue
		}

		if strings.HasPrefix(line, "@@") {
			flush()
			hunk, err := parseHunkHeader(line)
			if err != nil {
				continue
			}
			if sawHunk {
				// GitHub diff positions count every line after the first
				// @@ header, later headers included.
				position++
			}
			sawHunk = true
			currentHunk = &hunk
			currentNewLine = hunk.NewStart
			continue
		}

		if currentHunk == nil {
			continue
		}

		position++
		change := domain.LineChange{Position: position}
		if line == "" {
			// Empty context line whose leading space was stripped in
			// transit. It still occupies a position.
			change.Type = domain.LineContext
			change.NewLine = intPtr(currentNewLine)
			currentNewLine++
			currentHunk.Lines = append(currentHunk.Lines, change)
			continue
		}
		switch line[0] {
		case '+':
			change.Type = domain.LineAddition
			change.Content = line[1:]
			change.NewLine = intPtr(currentNewLine)
			currentNewLine++
		case '-':
			change.Type = domain.LineDeletion
			change.Content = line[1:]
		case ' ':
			change.Type = domain.LineContext
			change.Content = line[1:]
			change.NewLine = intPtr(currentNewLine)
			currentNewLine++
		default:
			// Tolerate odd lines as context.
			change.Type = domain.LineContext
			change.Content = line
			change.NewLine = intPtr(currentNewLine)
			currentNewLine++
		}
		currentHunk.Lines = append(currentHunk.Lines, change)
	}
	flush()

	if file.Path == "" {
		return domain.FileDiff{}, false
	}
	return file, true
}

// FindPosition returns the diff position for a new-side line number in the
// given file, or nil when the line is not part of the diff (deleted lines,
// unchanged regions outside hunks).
func FindPosition(file domain.FileDiff, newLine int) *int {
	if newLine <= 0 {
		return nil
	}
	for _, hunk := range file.Hunks {
		for _, line := range hunk.Lines {
			if line.NewLine != nil && *line.NewLine == newLine {
				return intPtr(line.Position)
			}
		}
	}
	return nil
}

// pathFromGitHeader extracts the b-side path from `diff --git a/x b/x`.
func pathFromGitHeader(line string) (string, bool) {
	rest := strings.TrimPrefix(line, "diff --git ")
	idx := strings.Index(rest, " b/")
	if idx < 0 {
		return "", false
	}
	return rest[idx+len(" b/"):], true
}

// stripPathPrefix removes the a/ or b/ prefix and maps /dev/null to "".
func stripPathPrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

// parseHunkHeader parses a line like "@@ -10,7 +10,8 @@ func foo() {".
func parseHunkHeader(line string) (domain.Hunk, error) {
	hunk := domain.Hunk{Header: line}

	parts := strings.Split(line, "@@")
	if len(parts) < 2 {
		return hunk, nil
	}

	for _, field := range strings.Fields(strings.TrimSpace(parts[1])) {
		if strings.HasPrefix(field, "-") {
			hunk.OldStart, hunk.OldLines = parseRange(strings.TrimPrefix(field, "-"))
		} else if strings.HasPrefix(field, "+") {
			hunk.NewStart, hunk.NewLines = parseRange(strings.TrimPrefix(field, "+"))
		}
	}
	return hunk, nil
}

// parseRange parses "start,count" or "start".
func parseRange(s string) (start, count int) {
	if idx := strings.Index(s, ","); idx >= 0 {
		start, _ = strconv.Atoi(s[:idx])
		count, _ = strconv.Atoi(s[idx+1:])
	} else {
		start, _ = strconv.Atoi(s)
		count = 1
	}
	return
}

func intPtr(n int) *int {
	return &n
}
