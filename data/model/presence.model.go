package model

// PresenceRecord is the persisted last-activity marker for a user. At most
// one record exists per user; every new activity report overwrites it.
type PresenceRecord struct {
	UserID   string `json:"user_id" bson:"user_id"`
	LastSeen int64  `json:"last_seen" bson:"last_seen"`
}

// UserStatus is a computed online flag for one user. "Offline" is never
// stored; it is derived from the record's freshness at read time.
type UserStatus struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

type PresenceModel struct {
	UserID   string `json:"user_id"`
	Online   bool   `json:"online"`
	LastSeen int64  `json:"last_seen,omitempty"`
}

type StatusListModel struct {
	Statuses []UserStatus `json:"statuses"`
}
