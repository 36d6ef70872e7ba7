package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kazz187/agentfeed/internal/task"
	"github.com/kazz187/agentfeed/pkg/cerr"
)

var fileInDescription = regexp.MustCompile(`(?i)(?:create|add|new)(?:\s+(?:a|an|the))?(?:\s+file(?:\s+(?:named|called))?)?\s+([A-Za-z0-9_\-./]+\.[A-Za-z0-9]+)`)

// FileNameFromDescription finds the file named in text such as "create notes.md" or "add a file called x.txt".
func FileNameFromDescription(desc string) (string, bool) {
	m := fileInDescription.FindStringSubmatch(desc)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (e *FileExecutor) createFiles(t *task.Task) (*Result, error) {
	names := t.FilesToCreate
	if len(names) == 0 {
		if name, ok := FileNameFromDescription(t.Description); ok {
			names = []string{name}
		}
	}
	if len(names) == 0 {
		return failure("Could not determine which file to create", nil), nil
	}

	created := []string{}
	var rejected []string
	for _, name := range names {
		abs, rel, err := e.resolve(name)
		if err != nil {
			rejected = append(rejected, name)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, cerr.NewError(cerr.Internal, fmt.Sprintf("failed to create directory for %s", rel), err)
		}
		content, err := renderTemplate(rel, t, e.signature)
		if err != nil {
			return nil, cerr.NewError(cerr.Internal, fmt.Sprintf("failed to render template for %s", rel), err)
		}
		if err := os.WriteFile(abs, []byte(content), fileMode(rel)); err != nil {
			return nil, cerr.NewError(cerr.Internal, fmt.Sprintf("failed to create %s", rel), err)
		}
		created = append(created, rel)
	}

	details := map[string]any{"action": "file_creation"}
	if len(rejected) > 0 {
		details["rejected"] = rejected
	}
	return &Result{
		Success:       true,
		Message:       fmt.Sprintf("Created %d file(s)", len(created)),
		FilesModified: created,
		Details:       details,
	}, nil
}

func fileMode(rel string) os.FileMode {
	if strings.EqualFold(filepath.Ext(rel), ".sh") {
		return 0o755
	}
	return 0o644
}

func (e *FileExecutor) editFiles(t *task.Task) (*Result, error) {
	if len(t.FilesToModify) == 0 {
		return failure("No files specified for modification", nil), nil
	}

	modified := []string{}
	var missing, unchanged, rejected []string
	var diff strings.Builder
	for _, name := range t.FilesToModify {
		abs, rel, err := e.resolve(name)
		if err != nil {
			rejected = append(rejected, name)
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, rel)
				continue
			}
			return nil, cerr.NewError(cerr.Internal, fmt.Sprintf("failed to stat %s", rel), err)
		}
		if !info.Mode().IsRegular() {
			missing = append(missing, rel)
			continue
		}
		before, err := os.ReadFile(abs)
		if err != nil {
			return nil, cerr.NewError(cerr.Internal, fmt.Sprintf("failed to read %s", rel), err)
		}

		marker := editMarker(rel, e.signature)
		if strings.HasPrefix(string(before), marker) {
			unchanged = append(unchanged, rel)
			continue
		}
		after := marker + string(before)
		if err := os.WriteFile(abs, []byte(after), info.Mode().Perm()); err != nil {
			return nil, cerr.NewError(cerr.Internal, fmt.Sprintf("failed to write %s", rel), err)
		}
		modified = append(modified, rel)

		d, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(before)),
			B:        difflib.SplitLines(after),
			FromFile: "a/" + rel,
			ToFile:   "b/" + rel,
			Context:  3,
		})
		if err == nil {
			diff.WriteString(d)
		}
	}

	details := map[string]any{"action": "file_edit", "note": "Basic modification applied"}
	if diff.Len() > 0 {
		details["diff"] = diff.String()
	}
	if len(missing) > 0 {
		details["missing"] = missing
	}
	if len(unchanged) > 0 {
		details["unchanged"] = unchanged
	}
	if len(rejected) > 0 {
		details["rejected"] = rejected
	}
	return &Result{
		Success:       true,
		Message:       fmt.Sprintf("Modified %d file(s)", len(modified)),
		FilesModified: modified,
		Details:       details,
	}, nil
}

func (e *FileExecutor) deleteFiles(t *task.Task) (*Result, error) {
	if len(t.FilesToDelete) == 0 {
		return failure("No files specified for deletion", nil), nil
	}

	deleted := []string{}
	var skipped, missing, rejected []string
	for _, name := range t.FilesToDelete {
		if e.denied(name) {
			skipped = append(skipped, name)
			continue
		}
		abs, rel, err := e.resolve(name)
		if err != nil {
			rejected = append(rejected, name)
			continue
		}
		info, err := os.Lstat(abs)
		if err != nil || !info.Mode().IsRegular() {
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, cerr.NewError(cerr.Internal, fmt.Sprintf("failed to stat %s", rel), err)
			}
			missing = append(missing, rel)
			continue
		}
		if err := os.Remove(abs); err != nil {
			return nil, cerr.NewError(cerr.Internal, fmt.Sprintf("failed to delete %s", rel), err)
		}
		deleted = append(deleted, rel)
	}

	details := map[string]any{"action": "file_deletion"}
	if len(skipped) > 0 {
		details["skipped"] = skipped
	}
	if len(missing) > 0 {
		details["missing"] = missing
	}
	if len(rejected) > 0 {
		details["rejected"] = rejected
	}
	e.logger.Debug("deletion finished", "deleted", deleted, "skipped", skipped)
	return &Result{
		Success:       true,
		Message:       fmt.Sprintf("Deleted %d file(s)", len(deleted)),
		FilesModified: deleted,
		Details:       details,
	}, nil
}
