package roster

// UnknownMemberName is shown for entries whose display name could not be resolved.
const UnknownMemberName = "Unknown Member"

// Entry is one enrolled member as displayed on a class page.
type Entry struct {
	MemberID    string
	DisplayName string
}

// View is the in-memory roster projection for one class as seen by one viewer.
// Fields are unexported so the viewer-enrolled flag can only be derived from the
// entries: ViewerEnrolled() == Contains(ViewerID()) for every value of View.
// All mutators return a new View and leave the receiver untouched.
type View struct {
	classID        string
	viewerID       string
	entries        []Entry
	viewerEnrolled bool
}

// New builds a View from an ordered list of entries.
// Duplicate member IDs keep their first occurrence; entries without a member ID are dropped.
// PRE: none
// POST: ViewerEnrolled reflects whether viewerID appears in entries
func New(classID, viewerID string, entries []Entry) View {
	seen := make(map[string]bool, len(entries))
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.MemberID == "" || seen[e.MemberID] {
			continue
		}
		seen[e.MemberID] = true
		if e.DisplayName == "" {
			e.DisplayName = UnknownMemberName
		}
		kept = append(kept, e)
	}
	return build(classID, viewerID, kept)
}

func build(classID, viewerID string, entries []Entry) View {
	v := View{classID: classID, viewerID: viewerID, entries: entries}
	v.viewerEnrolled = v.Contains(viewerID)
	return v
}

// ClassID returns the class this roster belongs to.
func (v View) ClassID() string { return v.classID }

// ViewerID returns the identity the enrolled flag is computed for ("" when anonymous).
func (v View) ViewerID() string { return v.viewerID }

// ViewerEnrolled reports whether the viewer is in the roster.
func (v View) ViewerEnrolled() bool { return v.viewerEnrolled }

// Len returns the number of enrolled members.
func (v View) Len() int { return len(v.entries) }

// Entries returns a copy of the ordered roster.
func (v View) Entries() []Entry {
	out := make([]Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Contains reports whether memberID is in the roster. The empty ID is never contained.
func (v View) Contains(memberID string) bool {
	if memberID == "" {
		return false
	}
	for _, e := range v.entries {
		if e.MemberID == memberID {
			return true
		}
	}
	return false
}

// With returns a View with e appended. Adding a member already present is a no-op.
// PRE: e.MemberID is non-empty
// POST: result.Contains(e.MemberID); receiver unchanged
func (v View) With(e Entry) View {
	if e.MemberID == "" || v.Contains(e.MemberID) {
		return v
	}
	if e.DisplayName == "" {
		e.DisplayName = UnknownMemberName
	}
	entries := make([]Entry, 0, len(v.entries)+1)
	entries = append(entries, v.entries...)
	entries = append(entries, e)
	return build(v.classID, v.viewerID, entries)
}

// Without returns a View with memberID removed. Removing an absent member is a no-op.
// POST: !result.Contains(memberID); receiver unchanged
func (v View) Without(memberID string) View {
	if !v.Contains(memberID) {
		return v
	}
	entries := make([]Entry, 0, len(v.entries)-1)
	for _, e := range v.entries {
		if e.MemberID != memberID {
			entries = append(entries, e)
		}
	}
	return build(v.classID, v.viewerID, entries)
}

// Equal reports whether two views hold the same class, viewer and ordered entries.
func (v View) Equal(o View) bool {
	if v.classID != o.classID || v.viewerID != o.viewerID || v.viewerEnrolled != o.viewerEnrolled {
		return false
	}
	if len(v.entries) != len(o.entries) {
		return false
	}
	for i := range v.entries {
		if v.entries[i] != o.entries[i] {
			return false
		}
	}
	return true
}
