package images

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/recordroom/vinyl-lister/internal/models"
)

// Group is the single-letter role code an operator puts at the front of a
// photo filename.
type Group string

const (
	GroupMain   Group = "M"
	GroupJacket Group = "J"
	GroupRecord Group = "R"
	GroupOther  Group = ""
)

var groupRank = map[Group]int{
	GroupMain:   1,
	GroupJacket: 2,
	GroupRecord: 3,
}

const otherRank = 4

// Role is what a filename says about the photo.
type Role struct {
	Group Group
	Index int
}

// Rank orders groups M, J, R, then everything else.
func (r Role) Rank() int {
	if rank, ok := groupRank[r.Group]; ok {
		return rank
	}
	return otherRank
}

var rolePattern = regexp.MustCompile(`^([A-Za-z])(\d*)(?:[_.\-\s]|$)`)

// Classify parses names like "J1_front.jpg", "M_label.jpg" or "R2.jpg".
// Unknown letters and unconventional names fall into GroupOther with index 0.
func Classify(name string) Role {
	m := rolePattern.FindStringSubmatch(name)
	if m == nil {
		return Role{Group: GroupOther}
	}
	g := Group(strings.ToUpper(m[1]))
	if _, ok := groupRank[g]; !ok {
		return Role{Group: GroupOther}
	}
	idx := 0
	if m[2] != "" {
		idx, _ = strconv.Atoi(m[2])
	}
	return Role{Group: g, Index: idx}
}

// Less reports whether image name a sorts before b.
func Less(a, b string) bool {
	ra, rb := Classify(a), Classify(b)
	if ra.Rank() != rb.Rank() {
		return ra.Rank() < rb.Rank()
	}
	if ra.Index != rb.Index {
		return ra.Index < rb.Index
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

// Sort orders refs in place by role rank, index, then case-insensitive name.
func Sort(refs []models.ImageRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		return Less(refs[i].Name, refs[j].Name)
	})
}

// SortEntries is Sort for FileStore listings.
func SortEntries(entries []models.FileEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return Less(entries[i].Name, entries[j].Name)
	})
}

// analysisRoles are the shots a person would use to identify a pressing:
// jacket front, jacket back, label.
var analysisRoles = []Role{
	{Group: GroupJacket, Index: 1},
	{Group: GroupJacket, Index: 2},
	{Group: GroupRecord, Index: 1},
}

// SelectForAnalysis picks at most n entries to send to the analyzer.
// J1, J2 and R1 shots win; without any of them the first n in sort order are used.
// The input is not modified.
func SelectForAnalysis(entries []models.FileEntry, n int) []models.FileEntry {
	sorted := append([]models.FileEntry(nil), entries...)
	SortEntries(sorted)

	var picked []models.FileEntry
	for _, e := range sorted {
		role := Classify(e.Name)
		for _, want := range analysisRoles {
			if role == want {
				picked = append(picked, e)
				break
			}
		}
		if len(picked) == n {
			return picked
		}
	}
	if len(picked) > 0 {
		return picked
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
