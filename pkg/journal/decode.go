package journal

import (
	"github.com/tidwall/gjson"

	"tableflip.dev/chainjournal/pkg/sui"
)

// Decode reads journal fields out of object data. It returns nil when the
// object content is not a Move object.
func Decode(data *sui.ObjectData) *Journal {
	if data == nil || data.Content == nil || data.Content.DataType != sui.DataTypeMoveObject {
		return nil
	}
	fields := gjson.ParseBytes(data.Content.Fields)

	j := &Journal{
		ID:      data.ObjectID,
		Owner:   fields.Get("owner").String(),
		Title:   fields.Get("title").String(),
		Entries: []Entry{},
	}
	fields.Get("entries").ForEach(func(_, v gjson.Result) bool {
		// Entries arrive either wrapped as {type, fields} or flat.
		f := v.Get("fields")
		if !f.Exists() {
			f = v
		}
		created := f.Get("create_at_ms")
		if !created.Exists() {
			created = f.Get("created_at_ms")
		}
		j.Entries = append(j.Entries, Entry{
			Content:     f.Get("content").String(),
			CreatedAtMs: created.Int(),
		})
		return true
	})
	return j
}

// Summarize decodes the fields the list view shows.
func Summarize(data *sui.ObjectData) (Summary, bool) {
	if data == nil {
		return Summary{}, false
	}
	s := Summary{ID: data.ObjectID, Title: UntitledJournal}
	if j := Decode(data); j != nil && j.Title != "" {
		s.Title = j.Title
	}
	return s, true
}
