/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures for API communication. Pages themselves
  (demos.Page) are already wire types; these wrap boards, demo definitions
  and errors.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Response: Wrappers

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/retail-dashboard/demos"
)

// DemoSummaryDTO is a demo entry in a board listing.
type DemoSummaryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BoardDTO represents a board and its pages.
type BoardDTO struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Demos []DemoSummaryDTO `json:"demos"`
}

// DemoDTO is a demo definition with its widgets resolved against the data.
type DemoDTO struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Height      string                `json:"height"`
	Params      []demos.ResolvedParam `json:"params"`
}

// OptionsDTO lists the values of one column.
type OptionsDTO struct {
	Column  string   `json:"column"`
	Table   string   `json:"table"`
	Options []string `json:"options"`
}

// ReloadResponse reports the reloaded dataset size.
type ReloadResponse struct {
	Source   string `json:"source"`
	Products int    `json:"products"`
	Sales    int    `json:"sales"`
}

// ErrorResponse is the error body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toBoardDTO(b *demos.Board) BoardDTO {
	dto := BoardDTO{ID: b.ID, Name: b.Name, Demos: make([]DemoSummaryDTO, len(b.Demos))}
	for i, d := range b.Demos {
		dto.Demos[i] = DemoSummaryDTO{ID: d.ID, Name: d.Name, Description: d.Description}
	}
	return dto
}
