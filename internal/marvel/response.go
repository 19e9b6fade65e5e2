package marvel

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/sakif/marvel-catalog/internal/model"
)

// envelope is the wrapper every upstream response comes in.
//
// "code" is an integer on normal responses but a string on auth failures
// (e.g. "InvalidCredentials"), so it is kept raw and read through statusCode.
// Those failures also carry their text in "message" instead of "status".
type envelope struct {
	Code    json.RawMessage `json:"code"`
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    struct {
		Offset  int            `json:"offset"`
		Limit   int            `json:"limit"`
		Total   int            `json:"total"`
		Count   int            `json:"count"`
		Results []rawCharacter `json:"results"`
	} `json:"data"`
}

// statusCode returns the numeric envelope code, or fallback when the code is
// absent or not a number.
func (e *envelope) statusCode(fallback int) int {
	raw := bytes.Trim(e.Code, `"`)
	if len(raw) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return fallback
	}
	return n
}

func (e *envelope) statusText() string {
	if e.Status != "" {
		return e.Status
	}
	if e.Message != "" {
		return e.Message
	}
	return string(bytes.Trim(e.Code, `"`))
}

type rawThumbnail struct {
	Path      string `json:"path"`
	Extension string `json:"extension"`
}

type rawCount struct {
	Available int `json:"available"`
}

// rawCharacter mirrors one upstream result. Pointer fields distinguish
// "missing" from "present but zero".
type rawCharacter struct {
	ID          int                 `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Thumbnail   rawThumbnail        `json:"thumbnail"`
	ResourceURI string              `json:"resourceURI"`
	URLs        []model.RelatedLink `json:"urls"`
	Comics      *rawCount           `json:"comics"`
	Series      *rawCount           `json:"series"`
	Stories     *rawCount           `json:"stories"`
	Events      *rawCount           `json:"events"`
}

// normalize turns a raw result into a model.Character, filling the gaps
// the upstream is allowed to leave: no description, no count groups, no urls.
func normalize(raw rawCharacter) model.Character {
	description := model.DefaultDescription
	if raw.Description != nil {
		description = *raw.Description
	}

	urls := raw.URLs
	if urls == nil {
		urls = []model.RelatedLink{}
	}

	return model.Character{
		ID:               raw.ID,
		Name:             raw.Name,
		Description:      description,
		Thumbnail:        model.Thumbnail{Path: raw.Thumbnail.Path, Extension: raw.Thumbnail.Extension},
		ResourceURI:      raw.ResourceURI,
		URLs:             urls,
		ComicsAvailable:  available(raw.Comics),
		SeriesAvailable:  available(raw.Series),
		StoriesAvailable: available(raw.Stories),
		EventsAvailable:  available(raw.Events),
	}
}

func available(c *rawCount) int {
	if c == nil || c.Available < 0 {
		return 0
	}
	return c.Available
}
