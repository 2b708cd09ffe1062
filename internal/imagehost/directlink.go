package imagehost

import (
	"regexp"
	"strings"
)

var (
	driveFilePath = regexp.MustCompile(`drive\.google\.com/file/d/([^/?#]+)`)
	driveIDParam  = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]{10,})`)
	dropboxDL     = regexp.MustCompile(`dl=\d`)
)

// DirectLink rewrites share links from Google Drive, Dropbox and
// OneDrive/SharePoint into URLs that return the file bytes. Other URLs are
// returned unchanged.
func DirectLink(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return u
	}

	if m := driveFilePath.FindStringSubmatch(u); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1]
	}
	if strings.Contains(u, "drive.google.com") {
		if m := driveIDParam.FindStringSubmatch(u); m != nil {
			return "https://drive.google.com/uc?export=download&id=" + m[1]
		}
	}

	if strings.Contains(u, "dropbox.com/") {
		if !strings.Contains(u, "?") {
			return u + "?dl=1"
		}
		if dropboxDL.MatchString(u) {
			return dropboxDL.ReplaceAllString(u, "dl=1")
		}
		return u + "&dl=1"
	}

	if strings.Contains(u, "1drv.ms") || strings.Contains(u, "sharepoint.com") {
		if strings.Contains(u, "?") {
			return u + "&download=1"
		}
		return u + "?download=1"
	}
	return u
}
