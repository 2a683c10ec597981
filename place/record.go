package place

// Record is a place located within the corridor of a roadway. The JSON keys are consumed by other tools and must not
// change.
type Record struct {
	Roadway        string  `json:"roadway"`
	PlaceName      string  `json:"placename"`
	PlaceNameAscii string  `json:"placename_ascii"`
	PlaceNameEn    string  `json:"placename_en"`
	PlaceTag       string  `json:"placetag"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	State          string  `json:"state/province"`
	Country        string  `json:"country"`
}

func NewRecord(roadway string, candidate Candidate, state string, country string) Record {
	return Record{
		Roadway:        roadway,
		PlaceName:      candidate.PlaceName(),
		PlaceNameAscii: candidate.PlaceNameAscii(),
		PlaceNameEn:    candidate.PlaceNameEn(),
		PlaceTag:       candidate.PlaceTag(),
		Latitude:       candidate.Position.Lat(),
		Longitude:      candidate.Position.Lon(),
		State:          state,
		Country:        country,
	}
}
