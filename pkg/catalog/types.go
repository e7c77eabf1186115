package catalog

import "fmt"

// Sort is one ranking mode offered by the games catalog.
type Sort struct {
	// Token is passed back as the sortToken query parameter.
	Token string `json:"token"`

	// ContextCountryRegionID is the sort's default region context.
	ContextCountryRegionID int `json:"contextCountryRegionId"`

	// Name is the human readable sort name (e.g. "Sponsored").
	Name string `json:"name"`
}

// PageContext carries the page cursor returned alongside the sorts.
type PageContext struct {
	PageID string `json:"pageId"`
}

// SortsResponse is the body of the sorts endpoint.
type SortsResponse struct {
	Sorts       []Sort      `json:"sorts"`
	PageContext PageContext `json:"pageContext"`
}

// Place is a single catalog entry. Two places are the same place when their
// PlaceID matches; Name is carried for display only.
type Place struct {
	Name    string `json:"name"`
	PlaceID uint64 `json:"placeId"`
}

// URL returns the deep link for the place.
func (p Place) URL() string {
	return fmt.Sprintf("https://www.roblox.com/games/%d/", p.PlaceID)
}

// PageRequest selects one page of the games list.
type PageRequest struct {
	SortToken string
	PageID    string
	RegionID  int
}
