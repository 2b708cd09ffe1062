package dataset

// Item is one labeled record folder: the FileStore folder holding its
// photos and the identification a careful person arrived at.
type Item struct {
	FolderID              string `json:"folder_id" parquet:"folder_id"`
	ExpectedTitle         string `json:"expected_title" parquet:"expected_title"`
	ExpectedArtist        string `json:"expected_artist" parquet:"expected_artist"`
	ExpectedCatalogNumber string `json:"expected_catalog_number" parquet:"expected_catalog_number,optional"`
	ExpectedReleased      string `json:"expected_released" parquet:"expected_released,optional"`
	ExpectedDiscogsURL    string `json:"expected_discogs_url" parquet:"expected_discogs_url,optional"`
}

// Label is a short human description for logs and reports.
func (i *Item) Label() string {
	switch {
	case i.ExpectedArtist != "" && i.ExpectedTitle != "":
		return i.ExpectedArtist + " - " + i.ExpectedTitle
	case i.ExpectedTitle != "":
		return i.ExpectedTitle
	default:
		return i.FolderID
	}
}
