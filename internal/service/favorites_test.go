package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sakif/cinefav/internal/apperror"
	"github.com/sakif/cinefav/internal/model"
)

func TestFavorites_AddTwiceListsOnce(t *testing.T) {
	d := newTestDirectory(newFakeStore())
	user := mustRegister(t, d, "Ada", "ada@example.com", "a")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := d.AddFavorite(ctx, user, "tt0111161"); err != nil {
			t.Fatalf("AddFavorite #%d: %v", i+1, err)
		}
	}

	favs, err := d.Favorites(ctx, user)
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if got := favs.Sorted(); !reflect.DeepEqual(got, []string{"tt0111161"}) {
		t.Errorf("Favorites = %v, want [tt0111161]", got)
	}
}

func TestFavorites_EmptyForNewUser(t *testing.T) {
	d := newTestDirectory(newFakeStore())
	user := mustRegister(t, d, "Ada", "ada@example.com", "a")

	favs, err := d.Favorites(context.Background(), user)
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(favs) != 0 {
		t.Errorf("expected no favorites, got %v", favs.Sorted())
	}
}

func TestFavorites_AddValidation(t *testing.T) {
	d := newTestDirectory(newFakeStore())
	user := mustRegister(t, d, "Ada", "ada@example.com", "a")

	for _, id := range []string{"", "   ", strings.Repeat("t", MaxMovieIDLength+1)} {
		if err := d.AddFavorite(context.Background(), user, id); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("AddFavorite(%q): expected ErrValidation, got %v", id, err)
		}
	}
}

func TestFilterFavorites_MarksOnlyFavorites(t *testing.T) {
	d := newTestDirectory(newFakeStore())
	user := mustRegister(t, d, "Ada", "ada@example.com", "a")
	ctx := context.Background()
	if err := d.AddFavorite(ctx, user, "tt001"); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	movies := mustParseMovies(t, `[{"imdb_id":"tt001","title":"A"},{"imdb_id":"tt002","title":"B"}]`)
	got, err := d.FilterFavorites(ctx, user, movies)
	if err != nil {
		t.Fatalf("FilterFavorites: %v", err)
	}

	want := `[{"imdb_id":"tt001","title":"A","favorite":true},{"imdb_id":"tt002","title":"B"}]`
	if s := mustEncode(t, got); s != want {
		t.Errorf("FilterFavorites =\n  %s\nwant\n  %s", s, want)
	}
	if got[1].Favorite() {
		t.Error("non-favorite must not be marked")
	}
}

func TestFilterFavorites_StoreError(t *testing.T) {
	store := newFakeStore()
	d := newTestDirectory(store)
	user := mustRegister(t, d, "Ada", "ada@example.com", "a")
	store.listErr = errors.New("connection reset")

	_, err := d.FilterFavorites(context.Background(), user, mustParseMovies(t, `[{"imdb_id":"tt001"}]`))
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected store error, got %v", err)
	}
}

func TestAnnotate(t *testing.T) {
	favorites := model.MovieSet{"tt001": {}, "tt003": {}}

	tests := []struct {
		name    string
		listing string
		want    string
	}{
		{
			name:    "empty listing",
			listing: `[]`,
			want:    `[]`,
		},
		{
			name:    "order preserved",
			listing: `[{"imdb_id":"tt003"},{"imdb_id":"tt002"},{"imdb_id":"tt001"}]`,
			want:    `[{"imdb_id":"tt003","favorite":true},{"imdb_id":"tt002"},{"imdb_id":"tt001","favorite":true}]`,
		},
		{
			name:    "entries without a usable id are untouched",
			listing: `[{"title":"no id"},{"imdb_id":42},null,"tt001"]`,
			want:    `[{"title":"no id"},{"imdb_id":42},null,"tt001"]`,
		},
		{
			name:    "numbers and key order of non-favorites survive",
			listing: `[{"rating":1.10,"imdb_id":"tt002","tmdb_id":12345678901234567891}]`,
			want:    `[{"rating":1.10,"imdb_id":"tt002","tmdb_id":12345678901234567891}]`,
		},
		{
			name:    "existing favorite field is overwritten in place",
			listing: `[{"favorite":false,"imdb_id":"tt001","year":1994}]`,
			want:    `[{"favorite":true,"imdb_id":"tt001","year":1994}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Annotate(favorites, mustParseMovies(t, tt.listing))
			if s := mustEncode(t, got); s != tt.want {
				t.Errorf("Annotate = %s, want %s", s, tt.want)
			}
		})
	}
}

func mustParseMovies(t *testing.T, listing string) []model.Movie {
	t.Helper()
	var movies []model.Movie
	if err := json.Unmarshal([]byte(listing), &movies); err != nil {
		t.Fatalf("parsing listing: %v", err)
	}
	return movies
}

func mustEncode(t *testing.T, movies []model.Movie) string {
	t.Helper()
	data, err := json.Marshal(movies)
	if err != nil {
		t.Fatalf("encoding listing: %v", err)
	}
	return string(data)
}

func TestRemoveFavorite(t *testing.T) {
	d := newTestDirectory(newFakeStore())
	user := mustRegister(t, d, "Ada", "ada@example.com", "a")
	ctx := context.Background()
	if err := d.AddFavorite(ctx, user, "tt001"); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	if err := d.RemoveFavorite(ctx, user, "tt001"); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	if err := d.RemoveFavorite(ctx, user, "tt001"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second remove: expected ErrNotFound, got %v", err)
	}

	favs, _ := d.Favorites(ctx, user)
	if len(favs) != 0 {
		t.Errorf("expected no favorites left, got %v", favs.Sorted())
	}
}
