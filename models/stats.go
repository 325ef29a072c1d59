package models

// ParticipantStats represents aggregated participation statistics
type ParticipantStats struct {
	Total        int
	Participated int
	Winners      int
	Pending      int
}
