package notion

import (
	"strings"

	"github.com/collabmatch/backend/internal/domain"
)

// queryResponse mirrors the paginated body of a database query.
type queryResponse struct {
	Results    []notionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

type notionPage struct {
	ID         string                    `json:"id"`
	Properties map[string]notionProperty `json:"properties"`
}

// notionProperty carries every value shape a property can take. Only
// the field matching Type is populated.
type notionProperty struct {
	Type        string       `json:"type"`
	Title       []richText   `json:"title"`
	RichText    []richText   `json:"rich_text"`
	Select      *selectValue `json:"select"`
	MultiSelect []selectValue `json:"multi_select"`
	Number      *float64     `json:"number"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

type selectValue struct {
	Name string `json:"name"`
}

// flattenPage extracts the columns this app cares about from a page's
// property map.
func flattenPage(page notionPage) domain.NotionEntry {
	entry := domain.NotionEntry{PageID: page.ID}
	for name, prop := range page.Properties {
		switch name {
		case "Name":
			entry.Name = plainText(prop.Title)
		case "Produkt":
			entry.Produkt = plainText(prop.RichText)
		case "Status":
			entry.Status = joinSelects(prop)
		case "Follower":
			if prop.Number != nil {
				entry.Follower = int64(*prop.Number)
			}
		}
	}
	return entry
}

func plainText(parts []richText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return strings.TrimSpace(b.String())
}

// joinSelects handles both select and multi_select columns so a schema
// change in the workspace does not silently drop the status.
func joinSelects(prop notionProperty) string {
	if prop.Type == "select" {
		if prop.Select != nil {
			return prop.Select.Name
		}
		return ""
	}
	names := make([]string, 0, len(prop.MultiSelect))
	for _, s := range prop.MultiSelect {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}
