// Package types holds the payloads shared between the daemon and its
// clients.
package types

// Item is the wire form of one display item.
type Item struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	ID     string `json:"id"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Sample string `json:"sample"`
}

// Text is what a host renders for the item, label then value.
func (i Item) Text() string {
	if i.Label == "" {
		return i.Value
	}
	return i.Label + " " + i.Value
}
