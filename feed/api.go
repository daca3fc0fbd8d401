package feed

import "time"

// APIMappings lists the CSV columns copied into each API content item
var APIMappings = []Mapping{
	{"id", "id"},
	{"name", "name"},
	{"description", "description"},
	{"uri", "uri"},
	{"video", "videoUri"},
	{"thumbnail", "thumbnailUri"},
	{"background", "backgroundUri"},
	{"category", "category"},
	{"duration", "duration"},
	{"TVSeriesUri", "seriesUri"},
	{"episodeNumber", "episodeNumber"},
	{"type", "videoType"},
	{"seasonNumber", "seasonNumber"},
	{"TVSeasonUri", "seasonUri"},
}

const apiTimeLayout = "2006-01-02T15:04:05"

// APIDocument builds the API JSON document: one content item per row plus
// a last_updated stamp taken from now.
func APIDocument(rows []Row, now time.Time) (Object, error) {
	content := make([]Object, 0, len(rows))
	for _, row := range rows {
		item, err := apply(nil, row, APIMappings)
		if err != nil {
			return nil, err
		}
		content = append(content, item)
	}

	return Object{
		{"content", content},
		{"metadata", Object{{"last_updated", now.Format(apiTimeLayout)}}},
	}, nil
}

// ConvertAPI reads the CSV at in and writes its API document to out
func ConvertAPI(in, out string, now time.Time) error {
	if err := EnsureAbsent(out); err != nil {
		return err
	}

	rows, err := ReadFile(in)
	if err != nil {
		return err
	}

	doc, err := APIDocument(rows, now)
	if err != nil {
		return err
	}
	return WriteFiles(Output{Path: out, Doc: doc})
}
