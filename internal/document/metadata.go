package document

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Metadata is the document front matter, authored as YAML inside a
// <pre class="metadata"> block near the top of the document.
type Metadata struct {
	// Title is the document title.
	Title string `yaml:"title"`

	// Shortname is the short identifier used in the biblio store.
	Shortname string `yaml:"shortname"`

	// Namespace names the root biblio namespace. Defaults to the
	// shortname, then to "spec".
	Namespace string `yaml:"namespace"`

	// Status is free-form (draft, standard, proposal).
	Status string `yaml:"status"`
}

// RootNamespace returns the effective root namespace name.
func (m Metadata) RootNamespace() string {
	if m.Namespace != "" {
		return m.Namespace
	}
	if m.Shortname != "" {
		return m.Shortname
	}
	return "spec"
}

// ExtractMetadata locates the metadata block and decodes it. A missing
// block yields zero metadata and no error; a malformed block yields
// zero metadata and an error the caller reports as a diagnostic.
func ExtractMetadata(doc *Document) (Metadata, error) {
	var m Metadata
	node := findMetadataNode(doc.Root)
	if node == nil {
		return m, nil
	}
	if err := yaml.Unmarshal([]byte(node.TextContent()), &m); err != nil {
		return Metadata{}, fmt.Errorf("metadata block: %w", err)
	}
	return m, nil
}

func findMetadataNode(n *Node) *Node {
	if n.Tag == "pre" && n.HasClass("metadata") {
		return n
	}
	for _, c := range n.Children() {
		if c.IsText() {
			continue
		}
		if found := findMetadataNode(c); found != nil {
			return found
		}
	}
	return nil
}
