package service

import (
	"sort"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type RequestView struct {
	DesignID     string          `json:"designId"`
	DesignTitle  string          `json:"designTitle"`
	DesignImage  string          `json:"designImage"`
	RequestedAt  time.Time       `json:"requestedAt"`
	ProductCount int             `json:"productCount"`
	Notes        []string        `json:"notes"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type RoomSection struct {
	RoomType types.RoomType `json:"roomType"`
	Label    string         `json:"label"`
	Count    int            `json:"count"`
	Requests []RequestView  `json:"requests"`
	Expanded bool           `json:"expanded"`
}

// RoomLabel turns a room key such as "living_room" into "Living Room".
func RoomLabel(room types.RoomType) string {
	caser := cases.Title(language.English)
	words := strings.Fields(strings.ReplaceAll(string(room), "_", " "))
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// orderedRooms lists the non-empty rooms: known room types first in their
// canonical order, then any other keys alphabetically.
func orderedRooms(requests repository.DesignRequests) []types.RoomType {
	rooms := make([]types.RoomType, 0, len(requests))
	seen := make(map[types.RoomType]bool, len(requests))
	for _, room := range types.ValidRoomTypes {
		if len(requests[room]) > 0 {
			rooms = append(rooms, room)
		}
		seen[room] = true
	}
	var extra []types.RoomType
	for room, list := range requests {
		if !seen[room] && len(list) > 0 {
			extra = append(extra, room)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(rooms, extra...)
}

// requestNotes collects the request note followed by product notes, skipping blanks.
func requestNotes(r repository.DesignRequest) []string {
	notes := make([]string, 0, 1+len(r.Products))
	if r.Notes != nil && strings.TrimSpace(*r.Notes) != "" {
		notes = append(notes, strings.TrimSpace(*r.Notes))
	}
	for _, p := range r.Products {
		if p.Notes != nil && strings.TrimSpace(*p.Notes) != "" {
			notes = append(notes, strings.TrimSpace(*p.Notes))
		}
	}
	return notes
}

// AggregateDesignRequests builds one section per non-empty room.
func AggregateDesignRequests(requests repository.DesignRequests) []RoomSection {
	rooms := orderedRooms(requests)
	sections := make([]RoomSection, 0, len(rooms))
	for _, room := range rooms {
		list := requests[room]
		views := make([]RequestView, len(list))
		for i, r := range list {
			views[i] = RequestView{
				DesignID:     r.DesignID,
				DesignTitle:  r.DesignTitle,
				DesignImage:  r.DesignImage,
				RequestedAt:  r.RequestedAt,
				ProductCount: len(r.Products),
				Notes:        requestNotes(r),
				Subtotal:     DesignSubtotal(r.Products),
			}
		}
		sections = append(sections, RoomSection{
			RoomType: room,
			Label:    RoomLabel(room),
			Count:    len(list),
			Requests: views,
			Expanded: true,
		})
	}
	return sections
}

// DesignIDs flattens every non-empty room bucket in section order.
// A design requested for two rooms appears once.
func DesignIDs(requests repository.DesignRequests) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, room := range orderedRooms(requests) {
		for _, r := range requests[room] {
			if !seen[r.DesignID] {
				seen[r.DesignID] = true
				ids = append(ids, r.DesignID)
			}
		}
	}
	return ids
}

// ProjectDesignsFromRequests copies every requested design into project form.
func ProjectDesignsFromRequests(requests repository.DesignRequests) []repository.ProjectDesign {
	var designs []repository.ProjectDesign
	for _, room := range orderedRooms(requests) {
		for _, r := range requests[room] {
			products := make([]repository.ProductItem, len(r.Products))
			copy(products, r.Products)
			var images []string
			if r.DesignImage != "" {
				images = []string{r.DesignImage}
			}
			designs = append(designs, repository.ProjectDesign{
				DesignID: r.DesignID,
				Title:    r.DesignTitle,
				RoomType: room,
				Images:   images,
				Products: products,
				Notes:    r.Notes,
			})
		}
	}
	return designs
}
