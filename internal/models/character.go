package models

import "time"

// Character is a catalog character as the game presents it.
type Character struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
}

// Comic is a catalog comic issue. When it comes from a connection query, CharacterIDs holds exactly the two
// characters that were queried, not the full cast.
type Comic struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	IssueNumber   *int      `json:"issueNumber,omitempty"`
	Description   string    `json:"description"`
	CoverImageURL string    `json:"coverImageUrl"`
	OnSaleDate    time.Time `json:"onSaleDate,omitzero"`
	CharacterIDs  []int     `json:"characterIds"`
}

// PathSegment is one node of the player's chain. The first segment has no comic.
type PathSegment struct {
	Character                 Character `json:"character"`
	ComicConnectingToPrevious *Comic    `json:"comic,omitempty"`
}
