package catalog

import "fmt"

// Wire shapes of the catalog bodies. Pointer fields tell a missing or null
// field apart from a zero value; every field is required.

type sortsBody struct {
	Sorts       []sortEntry      `json:"sorts"`
	PageContext *pageContextBody `json:"pageContext"`
}

type sortEntry struct {
	Token                  *string `json:"token"`
	ContextCountryRegionID *int    `json:"contextCountryRegionId"`
	Name                   *string `json:"name"`
}

type pageContextBody struct {
	PageID *string `json:"pageId"`
}

type listBody struct {
	Games []gameEntry `json:"games"`
}

type gameEntry struct {
	Name    *string `json:"name"`
	PlaceID *uint64 `json:"placeId"`
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}

func (b *sortsBody) response() (*SortsResponse, error) {
	if b.Sorts == nil {
		return nil, missingField("sorts")
	}
	if b.PageContext == nil {
		return nil, missingField("pageContext")
	}
	if b.PageContext.PageID == nil {
		return nil, missingField("pageContext.pageId")
	}

	resp := &SortsResponse{
		Sorts:       make([]Sort, 0, len(b.Sorts)),
		PageContext: PageContext{PageID: *b.PageContext.PageID},
	}
	for i, s := range b.Sorts {
		switch {
		case s.Token == nil:
			return nil, missingField(fmt.Sprintf("sorts[%d].token", i))
		case s.ContextCountryRegionID == nil:
			return nil, missingField(fmt.Sprintf("sorts[%d].contextCountryRegionId", i))
		case s.Name == nil:
			return nil, missingField(fmt.Sprintf("sorts[%d].name", i))
		case *s.ContextCountryRegionID < 0:
			return nil, fmt.Errorf("sorts[%d].contextCountryRegionId is negative (%d)", i, *s.ContextCountryRegionID)
		}
		resp.Sorts = append(resp.Sorts, Sort{
			Token:                  *s.Token,
			ContextCountryRegionID: *s.ContextCountryRegionID,
			Name:                   *s.Name,
		})
	}
	return resp, nil
}

func (b *listBody) places() ([]Place, error) {
	if b.Games == nil {
		return nil, missingField("games")
	}

	places := make([]Place, 0, len(b.Games))
	for i, g := range b.Games {
		if g.Name == nil {
			return nil, missingField(fmt.Sprintf("games[%d].name", i))
		}
		if g.PlaceID == nil {
			return nil, missingField(fmt.Sprintf("games[%d].placeId", i))
		}
		places = append(places, Place{Name: *g.Name, PlaceID: *g.PlaceID})
	}
	return places, nil
}
