package model

// FieldText is one formatted assessment cell.
type FieldText struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Record is the assembled assessment for one address: the title field first,
// then enabled fields in display order. Order is significant: downstream
// report emission aligns rows positionally with the field configuration.
type Record struct {
	Title  string      `json:"title"`
	Fields []FieldText `json:"fields"`
}

// Get returns the text for a field name, searching the title field too.
func (r Record) Get(name string) (string, bool) {
	if name == TitleField {
		return r.Title, true
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Text, true
		}
	}
	return "", false
}
