package model

// Branded identifier types. Raw strings from the transport layer are converted
// exactly once, at the validation boundary, so a VideoID can never be passed
// where a UserID is expected.
type (
	// VideoID is a platform video identifier (e.g. a YouTube video ID).
	VideoID string
	// VideoIDHash is the full hex SHA256 of a VideoID.
	VideoIDHash string
	// UserID is the hashed public user identifier (5000 rounds of SHA256
	// applied client- or server-side to the private ID).
	UserID string
	// HashedIP is a salted, iterated SHA256 of a submitter's IP address.
	HashedIP string
	// Category is a segment category such as "sponsor" or "selfpromo".
	Category string
	// SegmentUUID is the content-derived identifier of a submission.
	SegmentUUID string
	// Service is the video platform a segment belongs to.
	Service string
)

const (
	ServiceYouTube  Service = "YouTube"
	ServicePeerTube Service = "PeerTube"
)

// ParseService normalizes a service query value, defaulting to YouTube.
func ParseService(s string) Service {
	switch Service(s) {
	case ServicePeerTube:
		return ServicePeerTube
	default:
		return ServiceYouTube
	}
}

// Visibility mirrors the shadowHidden column: 0 visible, 1 hidden to everyone
// except the submitting IP.
type Visibility int

const (
	Visible Visibility = 0
	Hidden  Visibility = 1
)

// DBSegment is a persisted description segment row joined with its vote
// aggregate. Required is never persisted; it is set per request when the
// caller asked for that UUID explicitly.
type DBSegment struct {
	UUID            SegmentUUID `json:"UUID"`
	VideoID         VideoID     `json:"videoID"`
	HashedVideoID   VideoIDHash `json:"-"`
	Service         Service     `json:"-"`
	Category        Category    `json:"category"`
	StartTime       float64     `json:"-"`
	EndTime         float64     `json:"-"`
	FirstCharacters string      `json:"firstCharacters"`
	LastCharacters  string      `json:"lastCharacters"`
	Length          int         `json:"length"`
	DescriptionHash string      `json:"descriptionHash"`
	UserID          UserID      `json:"-"`
	Votes           int         `json:"votes"`
	Locked          bool        `json:"locked"`
	Hidden          bool        `json:"-"`
	ShadowHidden    Visibility  `json:"-"`
	Required        bool        `json:"-"`
	Reputation      float64     `json:"-"`
	TimeSubmitted   int64       `json:"-"`
	UserAgent       string      `json:"-"`
}

// IncomingSegment is one submitted segment descriptor. Offset is the character
// position where the match begins inside the description; together with Length
// it forms the span used for overlap grouping.
type IncomingSegment struct {
	Category        Category `json:"category"`
	DescriptionHash string   `json:"descriptionHash"`
	FirstCharacters string   `json:"firstCharacters"`
	LastCharacters  string   `json:"lastCharacters"`
	Length          int      `json:"length"`
	Offset          float64  `json:"offset"`
}

// SubmissionRequest is the POST /api/descriptionSegments body.
type SubmissionRequest struct {
	VideoID   string            `json:"videoID"`
	UserID    string            `json:"userID"`
	Service   string            `json:"service,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Segments  []IncomingSegment `json:"segments"`
}

// PostedSegment is returned per stored segment after a successful submission.
type PostedSegment struct {
	UUID     SegmentUUID `json:"UUID"`
	Category Category    `json:"category"`
}

// Segment is the client-facing view of a selected segment.
type Segment struct {
	UUID            SegmentUUID `json:"UUID"`
	Category        Category    `json:"category"`
	DescriptionHash string      `json:"descriptionHash"`
	FirstCharacters string      `json:"firstCharacters"`
	LastCharacters  string      `json:"lastCharacters"`
	Length          int         `json:"length"`
	Votes           int         `json:"votes"`
	Locked          bool        `json:"locked"`
}

// VideoData groups selected segments per video for hash-prefix lookups. The
// full video hash is included so the client can match its local hash without
// the server ever learning which video was requested.
type VideoData struct {
	VideoID  VideoID     `json:"videoID"`
	Hash     VideoIDHash `json:"hash"`
	Segments []Segment   `json:"segments"`
}

// ToSegment converts a DB row to its client-facing view.
func (s DBSegment) ToSegment() Segment {
	return Segment{
		UUID:            s.UUID,
		Category:        s.Category,
		DescriptionHash: s.DescriptionHash,
		FirstCharacters: s.FirstCharacters,
		LastCharacters:  s.LastCharacters,
		Length:          s.Length,
		Votes:           s.Votes,
		Locked:          s.Locked,
	}
}
