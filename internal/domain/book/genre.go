package book

// Genre is one value of the closed genre set.
type Genre string

const (
	GenreFiction        Genre = "Fiction"
	GenreNonFiction     Genre = "Non-Fiction"
	GenreMystery        Genre = "Mystery"
	GenreThriller       Genre = "Thriller"
	GenreRomance        Genre = "Romance"
	GenreScienceFiction Genre = "Science Fiction"
	GenreFantasy        Genre = "Fantasy"
	GenreHorror         Genre = "Horror"
	GenreBiography      Genre = "Biography"
	GenreHistory        Genre = "History"
	GenreSelfHelp       Genre = "Self-Help"
	GenrePoetry         Genre = "Poetry"
	GenreAdventure      Genre = "Adventure"
	GenreChildren       Genre = "Children"
	GenreYoungAdult     Genre = "Young Adult"
)

// The catalog's static configuration. Built once at package init and only
// handed out as copies, so nothing can mutate it at runtime.
var (
	genres = []Genre{
		GenreFiction, GenreNonFiction, GenreMystery, GenreThriller, GenreRomance,
		GenreScienceFiction, GenreFantasy, GenreHorror, GenreBiography, GenreHistory,
		GenreSelfHelp, GenrePoetry, GenreAdventure, GenreChildren, GenreYoungAdult,
	}
	genreSet = func() map[Genre]struct{} {
		m := make(map[Genre]struct{}, len(genres))
		for _, g := range genres {
			m[g] = struct{}{}
		}
		return m
	}()

	searchableFields = []string{"title", "author", "genre"}
	filterableFields = []string{"title", "author", "genre", "publication_date"}
	sortableFields   = map[string]struct{}{
		"id":               {},
		"title":            {},
		"author":           {},
		"genre":            {},
		"publication_date": {},
		"created_at":       {},
		"updated_at":       {},
	}
)

// Genres returns the valid genres in declaration order.
func Genres() []Genre {
	return append([]Genre(nil), genres...)
}

// GenreNames is Genres as plain strings, for validators and docs.
func GenreNames() []string {
	out := make([]string, len(genres))
	for i, g := range genres {
		out[i] = string(g)
	}
	return out
}

func (g Genre) IsValid() bool {
	_, ok := genreSet[g]
	return ok
}

// SearchableFields are the text fields a search term is matched against.
func SearchableFields() []string {
	return append([]string(nil), searchableFields...)
}

// FilterableFields are the fields accepted as exact-match filters.
func FilterableFields() []string {
	return append([]string(nil), filterableFields...)
}

// IsFilterable reports whether field may be used as an exact-match filter.
func IsFilterable(field string) bool {
	for _, f := range filterableFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsSortable reports whether field may be used in ORDER BY.
func IsSortable(field string) bool {
	_, ok := sortableFields[field]
	return ok
}
