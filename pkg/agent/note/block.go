// Package note models the block-tree JSON format of editable note documents.
// A document is an ordered list of top-level blocks; every block carries a
// stable id, a type tag, a property map, inline content and nested children.
package note

import (
	"encoding/json"
	"fmt"
)

// Block is one node of a note document.
//
// Props and Content are kept as raw JSON: props must round-trip an explicit
// empty object without dropping it, and inline content is a heterogeneous
// list for most block types but a single object for tables. The patch engine
// re-renders whole documents, so both fields have to survive byte-faithfully.
type Block struct {
	Id       string          `json:"id"`
	Type     string          `json:"type"`
	Props    json.RawMessage `json:"props,omitempty"`
	Content  json.RawMessage `json:"content,omitempty"`
	Children []Block         `json:"children"`
}

// Document is the ordered top-level block sequence of one note.
type Document []Block

// ParseDocument decodes note content into its block list.
func ParseDocument(content []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("note content is not a valid block document: %w", err)
	}
	return doc, nil
}

// Render serializes the document in the compact form notes are stored in.
func (d Document) Render() ([]byte, error) {
	return json.Marshal(d)
}

// RenderPretty serializes the document in the canonical indented form used
// for line-addressed editing. Line numbers handed to the model always refer
// to this rendering.
func (d Document) RenderPretty() ([]byte, error) {
	return json.MarshalIndent(d, "", "    ")
}

// IndexOf returns the position of the top-level block with the given id, or
// -1 when no such block exists.
func (d Document) IndexOf(id string) int {
	for i, b := range d {
		if b.Id == id {
			return i
		}
	}
	return -1
}
