package feed

import "time"

const (
	schemaContext  = "http://schema.org"
	feedTimeLayout = "2006-01-02T15:04:05Z"

	typeMovie   = "Movie"
	typeEpisode = "TVEpisode"

	// content stays available long after it is published
	availabilityWindow = 20 * 365 * 24 * time.Hour
)

// MediaTypes maps the CSV type column onto schema.org types
var MediaTypes = map[string]string{
	"clip":    "Clip",
	"episode": typeEpisode,
	"movie":   typeMovie,
}

// MovieMappings lists the CSV columns copied into each movie element
var MovieMappings = []Mapping{
	{"id", "@id"},
	{"name", "name"},
	{"description", "description"},
	{"uri", "url"},
	{"duration", "duration"},
	{"EIDR", "titleEIDR"},
}

// EpisodeMappings lists the CSV columns copied into each episode element
var EpisodeMappings = []Mapping{
	{"id", "@id"},
	{"name", "name"},
	{"description", "description"},
	{"uri", "url"},
	{"episodeNumber", "episodeNumber"},
	{"duration", "duration"},
	{"EIDR", "titleEIDR"},
}

func mediaContext() []any {
	return []any{schemaContext, Object{{"@language", "en"}}}
}

func mediaType(row Row) (string, error) {
	v, err := row.Text("type")
	if err != nil {
		return "", err
	}
	t, ok := MediaTypes[v]
	if !ok {
		return "", &UnknownTypeError{Value: v}
	}
	return t, nil
}

// MediaFeeds builds the movies and TV episodes DataFeed documents. Clip rows
// belong to neither feed. Every row's type is checked before anything is
// built.
func MediaFeeds(rows []Row, now time.Time) (movies, episodes Object, err error) {
	types := make([]string, len(rows))
	for i, row := range rows {
		if types[i], err = mediaType(row); err != nil {
			return nil, nil, err
		}
	}

	action := watchActionFactory(now)

	var movieElements, seriesElements, episodeElements []Object
	seen := make(map[[2]any]bool)
	for i, row := range rows {
		switch types[i] {
		case typeMovie:
			item, err := movieElement(row, action)
			if err != nil {
				return nil, nil, err
			}
			movieElements = append(movieElements, item)

		case typeEpisode:
			item, err := episodeElement(row, action)
			if err != nil {
				return nil, nil, err
			}
			episodeElements = append(episodeElements, item)

			series, err := seriesKey(row)
			if err != nil {
				return nil, nil, err
			}
			if !seen[series] {
				seen[series] = true
				seriesElements = append(seriesElements, Object{
					{"@context", mediaContext()},
					{"@type", "TVSeries"},
					{"@id", series[0]},
					{"url", series[0]},
					{"name", series[1]},
					{"potentialAction", action(series[0])},
				})
			}
		}
	}

	stamp := now.UTC().Format(feedTimeLayout)
	movies = dataFeed(stamp, movieElements)
	episodes = dataFeed(stamp, append(seriesElements, episodeElements...))
	return movies, episodes, nil
}

func dataFeed(stamp string, elements []Object) Object {
	if elements == nil {
		elements = []Object{}
	}
	return Object{
		{"@context", schemaContext},
		{"@type", "DataFeed"},
		{"dateModified", stamp},
		{"dataFeedElement", elements},
	}
}

func movieElement(row Row, action func(any) Object) (Object, error) {
	item, err := apply(Object{{"@context", mediaContext()}, {"@type", typeMovie}}, row, MovieMappings)
	if err != nil {
		return nil, err
	}
	uri, err := row.Get("uri")
	if err != nil {
		return nil, err
	}
	return item.Set("potentialAction", action(uri)), nil
}

func episodeElement(row Row, action func(any) Object) (Object, error) {
	item, err := apply(Object{{"@context", mediaContext()}, {"@type", typeEpisode}}, row, EpisodeMappings)
	if err != nil {
		return nil, err
	}

	season, err := apply(Object{{"@type", "TVSeason"}}, row, []Mapping{
		{"TVSeasonUri", "@id"},
		{"seasonNumber", "seasonNumber"},
	})
	if err != nil {
		return nil, err
	}
	series, err := apply(Object{{"@type", "TVSeries"}}, row, []Mapping{
		{"TVSeriesUri", "@id"},
		{"category", "name"},
	})
	if err != nil {
		return nil, err
	}
	uri, err := row.Get("uri")
	if err != nil {
		return nil, err
	}

	return item.
		Set("partOfSeason", season).
		Set("partOfSeries", series).
		Set("potentialAction", action(uri)), nil
}

// seriesKey identifies a TV series by its URI and category
func seriesKey(row Row) ([2]any, error) {
	uri, err := row.Get("TVSeriesUri")
	if err != nil {
		return [2]any{}, err
	}
	category, err := row.Get("category")
	if err != nil {
		return [2]any{}, err
	}
	return [2]any{uri, category}, nil
}

// watchActionFactory returns a builder of WatchAction objects whose
// availability window starts at now
func watchActionFactory(now time.Time) func(url any) Object {
	starts := now.UTC().Format(feedTimeLayout)
	ends := now.Add(availabilityWindow).UTC().Format(feedTimeLayout)

	return func(url any) Object {
		return Object{
			{"@type", "WatchAction"},
			{"target", Object{
				{"@type", "EntryPoint"},
				{"urlTemplate", url},
				{"actionPlatform", []string{
					"http://schema.org/AndroidTVPlatform",
					"http://schema.googleapis.com/GoogleVideoCast",
				}},
			}},
			{"actionAccessibilityRequirement", Object{
				{"@type", "ActionAccessSpecification"},
				{"category", "nologinrequired"},
				{"availabilityStarts", starts},
				{"availabilityEnds", ends},
				{"eligibleRegion", "EARTH"},
			}},
		}
	}
}

// ConvertMediaFeed reads the CSV at in and writes the movies and episodes
// feeds. Neither output is left behind when the conversion fails.
func ConvertMediaFeed(in, moviesOut, episodesOut string, now time.Time) error {
	if err := EnsureAbsent(moviesOut, episodesOut); err != nil {
		return err
	}

	rows, err := ReadFile(in)
	if err != nil {
		return err
	}

	movies, episodes, err := MediaFeeds(rows, now)
	if err != nil {
		return err
	}
	return WriteFiles(
		Output{Path: moviesOut, Doc: movies},
		Output{Path: episodesOut, Doc: episodes},
	)
}
