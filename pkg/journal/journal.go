// Package journal describes the on-chain journal objects and how the client
// reads them.
package journal

import (
	"fmt"
	"strings"
)

// Move module and function names of the journal contract.
const (
	Module          = "journal"
	StructName      = "Journal"
	FuncNewJournal  = "new_journal"
	FuncAddEntry    = "add_entry"
	DefaultTitle    = "Journal"
	UntitledJournal = "Untitled Journal"
)

// Journal is the decoded state of one journal object.
type Journal struct {
	ID      string  `json:"id"`
	Owner   string  `json:"owner"`
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Entry is one appended record. CreatedAtMs comes from the chain's shared
// clock.
type Entry struct {
	Content     string `json:"content"`
	CreatedAtMs int64  `json:"createdAtMs"`
}

// Summary is what the list view needs per journal.
type Summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// StructType is the fully-qualified journal type used to filter owned objects.
func StructType(packageID string) string {
	return fmt.Sprintf("%s::%s::%s", packageID, Module, StructName)
}

// Target returns the fully-qualified call target for fn.
func Target(packageID, fn string) string {
	return fmt.Sprintf("%s::%s::%s", packageID, Module, fn)
}

// ValidText reports whether s may be submitted as a title or entry.
func ValidText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// OwnedBy reports whether addr is the journal's recorded owner.
func (j *Journal) OwnedBy(addr string) bool {
	if j == nil || addr == "" || j.Owner == "" {
		return false
	}
	return SameAddress(j.Owner, addr)
}

// NormalizeAddress lowercases addr and left-pads it to 32 bytes of hex.
func NormalizeAddress(addr string) string {
	a := strings.ToLower(strings.TrimSpace(addr))
	a = strings.TrimPrefix(a, "0x")
	if len(a) < 64 {
		a = strings.Repeat("0", 64-len(a)) + a
	}
	return "0x" + a
}

// SameAddress compares two addresses after normalization.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}
