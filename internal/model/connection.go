package model

// Connection is an undirected edge between two participants, recorded when
// they scan each other's badges. Duplicates are allowed — the same pair can
// connect more than once and the edge is stored as given (no ordering of the
// two ids is imposed).
type Connection struct {
	ID      int64 `json:"id"`
	UserID1 int64 `json:"user_id1"`
	UserID2 int64 `json:"user_id2"`
}
