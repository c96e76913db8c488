package skills

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// Finding is one problem reported by Lint
type Finding struct {
	Filename string
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Filename, f.Message)
}

var strictMarkdown = goldmark.New(goldmark.WithExtensions(meta.Meta))

// parseMeta decodes the header as YAML. The lenient line parser accepts
// headers that are not valid YAML; this is the strict counterpart.
func parseMeta(content string) (map[string]interface{}, error) {
	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := strictMarkdown.Convert([]byte(content), &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid YAML header")
	}
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}
	return metaData, nil
}

// LintSkill reports header and body problems of a single skill
func LintSkill(s *Skill) []Finding {
	var findings []Finding
	add := func(format string, args ...interface{}) {
		findings = append(findings, Finding{Filename: s.Filename, Message: fmt.Sprintf(format, args...)})
	}

	metaData, err := parseMeta(s.Content)
	if err != nil {
		add("%s", err.Error())
	} else {
		for _, key := range []string{"name", "description"} {
			value, exists := metaData[key]
			if !exists {
				add("%s is missing from the header", key)
				continue
			}
			str, isString := value.(string)
			if !isString {
				add("%s must be a string, got %T", key, value)
				continue
			}
			if strings.TrimSpace(str) == "" {
				add("%s is empty", key)
			}
		}
	}

	if s.Body() == "" {
		add("body is empty")
	}

	return findings
}

// Lint checks every scanned skill plus the rules that span files: extra
// 00- files that are not the control skill and unique selectable names.
func (r *ScanResult) Lint() []Finding {
	var findings []Finding
	if r == nil {
		return findings
	}

	control := r.Control()
	seen := make(map[string]string)
	for _, s := range r.Skills {
		findings = append(findings, LintSkill(s)...)

		if s == control {
			continue
		}
		if s.IsControl() {
			findings = append(findings, Finding{
				Filename: s.Filename,
				Message:  fmt.Sprintf("loaded as a regular skill, %s is the control skill", control.Filename),
			})
		}

		key := strings.ToLower(s.Name)
		if first, dup := seen[key]; dup {
			findings = append(findings, Finding{
				Filename: s.Filename,
				Message:  fmt.Sprintf("name %q is also used by %s", s.Name, first),
			})
			continue
		}
		seen[key] = s.Filename
	}

	return findings
}
