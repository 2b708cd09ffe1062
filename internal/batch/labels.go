package batch

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/recordroom/vinyl-lister/internal/models"
)

var folderIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)

// ParseFolderID accepts a Drive folder URL (".../folders/<id>?usp=...") or a
// bare folder id.
func ParseFolderID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: folder reference is required", models.ErrInvalidInput)
	}

	id := ref
	if _, after, ok := strings.Cut(ref, "/folders/"); ok {
		id = after
		if i := strings.IndexAny(id, "?#/"); i >= 0 {
			id = id[:i]
		}
	}
	if !folderIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: cannot parse folder reference %q", models.ErrInvalidInput, ref)
	}
	return id, nil
}

// Label builds the SKU for the n-th record listed under a parent folder,
// e.g. R240315_0008.
func Label(date time.Time, n int) string {
	return fmt.Sprintf("R%s_%04d", date.Format("060102"), n)
}
