package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// MovieIDKey is the field that identifies a movie in an external listing.
const MovieIDKey = "imdb_id"

// FavoriteKey is the field set on listing entries the user has favorited.
const FavoriteKey = "favorite"

// Favorite links a user to an external movie identifier (an IMDb id such as "tt0111161").
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	MovieID   string    `json:"imdb_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Movie is one entry of an external movie listing. Only MovieIDKey is
// interpreted; the entry's JSON is kept byte for byte, so numbers, key order
// and unknown fields come back out exactly as they went in.
type Movie struct {
	raw      json.RawMessage
	id       string
	favorite bool
}

// UnmarshalJSON keeps a copy of data and reads the imdb_id if data is an
// object with a string imdb_id. Any other JSON value is accepted as is.
func (m *Movie) UnmarshalJSON(data []byte) error {
	*m = Movie{raw: append(json.RawMessage(nil), data...)}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return err
	}
	if value, ok := fields[MovieIDKey]; ok {
		// A non-string id leaves the entry without an id.
		_ = json.Unmarshal(value, &m.id)
	}
	return nil
}

// MarshalJSON returns the entry unchanged unless it was marked as a
// favorite, in which case "favorite": true is set on it and every other
// field keeps its original bytes and position.
func (m Movie) MarshalJSON() ([]byte, error) {
	if len(m.raw) == 0 {
		return []byte("null"), nil
	}
	if !m.favorite {
		return m.raw, nil
	}
	return withFavorite(m.raw)
}

// ID returns the entry's movie identifier, or "" when it is missing or not a string.
func (m Movie) ID() string {
	return m.id
}

// MarkFavorite flags the entry as one of the user's favorites. Entries
// without an id cannot be favorites and are left alone.
func (m *Movie) MarkFavorite() {
	if m.id != "" {
		m.favorite = true
	}
}

// Favorite reports whether MarkFavorite was called on the entry.
func (m Movie) Favorite() bool {
	return m.favorite
}

// withFavorite rewrites a JSON object with FavoriteKey set to true,
// replacing an existing value in place or appending the key at the end.
func withFavorite(object []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(object))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, fmt.Errorf("model: movie entry is not a JSON object")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := false
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("model: reading movie entry key: %w", err)
		}
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("model: reading movie entry field %q: %w", key, err)
		}

		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')
		if key == FavoriteKey {
			buf.WriteString("true")
			seen = true
			continue
		}
		buf.Write(value)
	}

	if !seen {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"` + FavoriteKey + `":true`)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MovieSet is a set of movie identifiers.
type MovieSet map[string]struct{}

// NewMovieSet builds a set from the movie ids of the given favorites.
func NewMovieSet(favorites []Favorite) MovieSet {
	set := make(MovieSet, len(favorites))
	for _, f := range favorites {
		set[f.MovieID] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set.
func (s MovieSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order, never nil.
func (s MovieSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
