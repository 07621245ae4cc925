package metadata

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Form is one system form of an entity. FormXML is the serialized layout;
// Fields is the ordered list of data-bound control names extracted from it.
type Form struct {
	ID      string   `json:"formid"`
	Name    string   `json:"name"`
	FormXML string   `json:"formXml,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// ExtractFormFields returns the datafieldname of every control inside the
// form's <tabs> element, in document order. Controls without a datafieldname
// (spacers, subgrids, web resources) are ignored, as is anything outside
// <tabs> such as header and footer cells.
func ExtractFormFields(formXML string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(formXML))

	var fields []string
	tabsDepth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "tabs" {
				tabsDepth++
				continue
			}
			if tabsDepth == 0 || t.Name.Local != "control" {
				continue
			}
			for _, attr := range t.Attr {
				if attr.Name.Local == "datafieldname" && attr.Value != "" {
					fields = append(fields, attr.Value)
					break
				}
			}
		case xml.EndElement:
			if t.Name.Local == "tabs" {
				tabsDepth--
			}
		}
	}
	return fields, nil
}
