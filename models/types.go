package models

import "time"

// Vote error codes
const (
	CodeAlreadyVoted = "already_voted"
	CodeNotFound     = "not_found"
	CodeClosed       = "closed"
	CodeInternal     = "internal"

	CodeInvalidRequest = "invalid_request"
	CodeInvalidSession = "invalid_session"
)

// Request types

// Legacy clients send participant_id and device_fingerprint.
type VoteRequest struct {
	CandidateID       string `json:"candidate_id"`
	IdentityToken     string `json:"identity_token"`
	ParticipantID     string `json:"participant_id,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
}

type ResolveIdentityRequest struct {
	ScreenWidth         int      `json:"screen_width"`
	ScreenHeight        int      `json:"screen_height"`
	ColorDepth          int      `json:"color_depth"`
	PixelDepth          int      `json:"pixel_depth"`
	Timezone            string   `json:"timezone"`
	Language            string   `json:"language"`
	Languages           []string `json:"languages"`
	Platform            string   `json:"platform"`
	HardwareConcurrency int      `json:"hardware_concurrency"`
	DeviceMemory        float64  `json:"device_memory"`
	GraphicsRenderer    string   `json:"graphics_renderer,omitempty"`
	GraphicsVendor      string   `json:"graphics_vendor,omitempty"`
}

// Response types

type VoteResponse struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	CandidateID   string `json:"candidate_id,omitempty"`
	CandidateName string `json:"candidate_name,omitempty"`
	Message       string `json:"message,omitempty"`

	// Legacy names for the candidate, set whenever a candidate is named.
	ParticipantID   string `json:"participant_id,omitempty"`
	ParticipantName string `json:"participant_name,omitempty"`
}

type ResolveIdentityResponse struct {
	IdentityToken string `json:"identity_token"`
	Source        string `json:"source"`
}

type ElectionInfoResponse struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
	Open       bool        `json:"open"`
	ClosesIn   string      `json:"closes_in"`
}

type ResultsResponse struct {
	ElectionID string      `json:"election_id"`
	Open       bool        `json:"open"`
	TotalVotes int64       `json:"total_votes"`
	Candidates []Candidate `json:"candidates"`
}

type MyVoteResponse struct {
	HasVoted      bool       `json:"has_voted"`
	CandidateID   string     `json:"candidate_id,omitempty"`
	CandidateName string     `json:"candidate_name,omitempty"`
	CastAt        *time.Time `json:"cast_at,omitempty"`
}

type VoteDetailsResponse struct {
	Votes []VoteDetail `json:"votes"`
}

type AuditResponse struct {
	ElectionID string       `json:"election_id"`
	CheckedAt  time.Time    `json:"checked_at"`
	Healthy    bool         `json:"healthy"`
	Drift      []TallyDrift `json:"drift"`
}

// Domain types

type Election struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	OpensAt  time.Time `json:"opens_at"`
	ClosesAt time.Time `json:"closes_at"`
}

// IsOpen reports whether t falls inside [OpensAt, ClosesAt).
func (e Election) IsOpen(t time.Time) bool {
	return !t.Before(e.OpensAt) && t.Before(e.ClosesAt)
}

type Candidate struct {
	ID          string `json:"id"`
	ElectionID  string `json:"election_id"`
	DisplayName string `json:"display_name"`
	Tally       int64  `json:"tally"`
}

type VoteRecord struct {
	ID             string    `json:"id"`
	ElectionID     string    `json:"election_id"`
	IdentityToken  string    `json:"-"` // Never expose in JSON
	IdentitySource string    `json:"identity_source"`
	CandidateID    string    `json:"candidate_id"`
	CastAt         time.Time `json:"cast_at"`
	IPHash         string    `json:"-"`
	UserAgent      string    `json:"-"`
}

// VoteDetail is the admin view of a vote record.
type VoteDetail struct {
	VoteID         string    `json:"vote_id"`
	CandidateID    string    `json:"candidate_id"`
	CandidateName  string    `json:"candidate_name"`
	IdentitySource string    `json:"identity_source"`
	IdentityToken  string    `json:"identity_token"`
	IPHash         string    `json:"ip_hash,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty"`
	CastAt         time.Time `json:"cast_at"`
}

// TallyDrift describes a candidate whose cached tally disagrees with its vote records.
type TallyDrift struct {
	CandidateID string `json:"candidate_id"`
	DisplayName string `json:"display_name"`
	Tally       int64  `json:"tally"`
	Recorded    int64  `json:"recorded"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
