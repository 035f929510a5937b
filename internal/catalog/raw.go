package catalog

// RawMovie is a list entry as returned by search, tag and discover listings.
type RawMovie struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	GenreIDs     []int   `json:"genre_ids"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
	Popularity   float64 `json:"popularity"`
}

// MoviePage is one page of a movie listing.
type MoviePage struct {
	Page         int        `json:"page"`
	Results      []RawMovie `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

type SpokenLanguage struct {
	EnglishName string `json:"english_name"`
}

type ProductionCountry struct {
	Name string `json:"name"`
}

// RawMovieDetail is the full record returned by /movie/{id}.
type RawMovieDetail struct {
	ID                  int64               `json:"id"`
	Title               string              `json:"title"`
	Genres              []Genre             `json:"genres"`
	PosterPath          string              `json:"poster_path"`
	ReleaseDate         string              `json:"release_date"`
	VoteAverage         float64             `json:"vote_average"`
	VoteCount           int                 `json:"vote_count"`
	Runtime             int                 `json:"runtime"`
	Overview            string              `json:"overview"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
}

type CastMember struct {
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path"`
	Character   string `json:"character"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// RawCredits is the record returned by /movie/{id}/credits.
type RawCredits struct {
	ID   int64        `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Video is one trailer, teaser or clip attached to a movie.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// RawVideos is the record returned by /movie/{id}/videos.
type RawVideos struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}
