package skills

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const frontmatterDelimiter = "---"

// ParseFile reads and parses a single skill file
func ParseFile(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	skill, ok := Parse(filepath.Base(path), string(content))
	if !ok {
		return nil, errors.New("missing frontmatter")
	}
	skill.Path = path

	return skill, nil
}

// Parse builds a Skill from raw file content. It returns false when the
// content does not open with a "---" delimited header.
func Parse(filename, content string) (*Skill, bool) {
	header, _, ok := splitFrontmatter(content)
	if !ok {
		return nil, false
	}

	name := headerValue(header, "name")
	if name == "" {
		name = filename
	}

	return &Skill{
		Name:        name,
		Description: headerValue(header, "description"),
		Filename:    filename,
		Content:     content,
	}, true
}

// Body strips the header and returns the trimmed remainder. Content without
// a header is returned whole, trimmed.
func Body(content string) string {
	_, body, ok := splitFrontmatter(content)
	if !ok {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(body)
}

// splitFrontmatter separates the header lines from the body. The first line
// must be exactly "---" and the closing "---" must come after at least one
// header line.
func splitFrontmatter(content string) ([]string, string, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) < 3 || trimCR(lines[0]) != frontmatterDelimiter {
		return nil, "", false
	}

	for i := 2; i < len(lines); i++ {
		if trimCR(lines[i]) != frontmatterDelimiter {
			continue
		}
		header := make([]string, 0, i-1)
		for _, line := range lines[1:i] {
			header = append(header, trimCR(line))
		}
		return header, strings.Join(lines[i+1:], "\n"), true
	}

	return nil, "", false
}

// headerValue returns the trimmed rest of the first line starting with key:
func headerValue(header []string, key string) string {
	prefix := key + ":"
	for _, line := range header {
		if strings.HasPrefix(line, prefix) {
			if value := strings.TrimSpace(line[len(prefix):]); value != "" {
				return value
			}
		}
	}
	return ""
}

func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}
