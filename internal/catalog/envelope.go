package catalog

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/616degrees/internal/models"
)

// Envelope is the catalog's response wrapper.
type Envelope[T any] struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Offset  int `json:"offset"`
		Limit   int `json:"limit"`
		Total   int `json:"total"`
		Count   int `json:"count"`
		Results []T `json:"results"`
	} `json:"data"`
}

type thumbnail struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
}

type characterRecord struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Thumbnail   *thumbnail `json:"thumbnail"`
}

type resourceSummary struct {
	ResourceURI string `json:"resourceURI"`
	Name        string `json:"name"`
}

type comicRecord struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	IssueNumber *float64   `json:"issueNumber"`
	Description *string    `json:"description"`
	Thumbnail   *thumbnail `json:"thumbnail"`
	Dates       []struct {
		Type string `json:"type"`
		Date string `json:"date"`
	} `json:"dates"`
	Characters struct {
		Items []resourceSummary `json:"items"`
	} `json:"characters"`
}

const (
	sizeCharacter   = "standard_medium"
	sizeComic       = "portrait_medium"
	sizeComicDetail = "portrait_xlarge"

	noDescription = "No description available"
	dateLayout    = "2006-01-02T15:04:05-0700"
)

// placeholderImage is served by the frontend and renders the given text.
func placeholderImage(width, height int, text string) string {
	return "/placeholder.svg?width=" + strconv.Itoa(width) + "&height=" + strconv.Itoa(height) +
		"&text=" + url.QueryEscape(text)
}

func imageURL(t *thumbnail, size string) string {
	if t == nil || t.Path == "" {
		return placeholderImage(100, 100, "No Image") //nolint:mnd // placeholder dimensions
	}
	return t.Path + "/" + size + "." + t.Extension
}

func (r characterRecord) toCharacter() models.Character {
	description := strings.TrimSpace(r.Description)
	if description == "" {
		description = noDescription
	}
	return models.Character{
		ID:          r.ID,
		Name:        r.Name,
		Description: description,
		ImageURL:    imageURL(r.Thumbnail, sizeCharacter),
	}
}

func (r comicRecord) toComic(size string, characterIDs []int) models.Comic {
	comic := models.Comic{
		ID:            r.ID,
		Title:         r.Title,
		IssueNumber:   nil,
		Description:   "",
		CoverImageURL: imageURL(r.Thumbnail, size),
		OnSaleDate:    r.onSaleDate(),
		CharacterIDs:  characterIDs,
	}
	if r.IssueNumber != nil {
		issue := int(*r.IssueNumber)
		comic.IssueNumber = &issue
	}
	if r.Description != nil {
		comic.Description = *r.Description
	}
	return comic
}

func (r comicRecord) onSaleDate() time.Time {
	for _, d := range r.Dates {
		if d.Type != "onsaleDate" {
			continue
		}
		if t, err := time.Parse(dateLayout, d.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

var characterURIPattern = regexp.MustCompile(`/characters/(\d+)$`)

// castIDs extracts character ids from the resource URIs of a comic's cast.
func (r comicRecord) castIDs() []int {
	ids := make([]int, 0, len(r.Characters.Items))
	for _, item := range r.Characters.Items {
		matches := characterURIPattern.FindStringSubmatch(item.ResourceURI)
		if matches == nil {
			continue
		}
		if id, err := strconv.Atoi(matches[1]); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
