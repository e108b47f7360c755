package models

import "time"

// Fallacy is one logical fallacy the coach found in an argument.
type Fallacy struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

// Analysis is a single coaching run over an argument's text. Records are
// append-only; CreatedAt is assigned server-side, never by the upstream.
type Analysis struct {
	Fallacies           []Fallacy `json:"fallacies"`
	ClarityScore        int       `json:"clarityScore"`
	EvidenceFeedback    string    `json:"evidenceFeedback"`
	ConcisenessFeedback string    `json:"concisenessFeedback"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Argument is a debate draft. UserID is set at creation and never changes.
type Argument struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Topic           string     `json:"topic"`
	Claim           string     `json:"claim"`
	Reason          string     `json:"reason"`
	Evidence        string     `json:"evidence"`
	Impact          string     `json:"impact"`
	AnalysisHistory []Analysis `json:"analysisHistory"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ArgumentSummary is the list projection for a user's argument library.
type ArgumentSummary struct {
	ArgumentID string    `json:"argumentId"`
	Topic      string    `json:"topic"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ArgumentUpdate carries the editable text fields of an argument. Empty
// fields are left unchanged, so a client cannot clear a field this way.
type ArgumentUpdate struct {
	Claim    string `json:"claim"`
	Reason   string `json:"reason"`
	Evidence string `json:"evidence"`
	Impact   string `json:"impact"`
}
