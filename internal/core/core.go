package core

import "time"

// Origin tags where a Subject came from.
type Origin string

const (
	OriginFeed            Origin = "feed"
	OriginGenerated       Origin = "generated"
	OriginExternalRequest Origin = "external_request"
)

// ContentType classifies the style of article to write for a Subject.
type ContentType string

const (
	ContentTypeHowTo           ContentType = "how-to"
	ContentTypeListicle        ContentType = "listicle"
	ContentTypeOpinion         ContentType = "opinion"
	ContentTypeIndustryInsight ContentType = "industry-insight"
	ContentTypeTutorial        ContentType = "tutorial"
	ContentTypeReview          ContentType = "review"
	ContentTypeArticle         ContentType = "article"
	ContentTypeNews            ContentType = "news"
)

// ContentTypes lists every known content type.
func ContentTypes() []ContentType {
	return []ContentType{
		ContentTypeHowTo,
		ContentTypeListicle,
		ContentTypeOpinion,
		ContentTypeIndustryInsight,
		ContentTypeTutorial,
		ContentTypeReview,
		ContentTypeArticle,
		ContentTypeNews,
	}
}

// Subject is the chosen topic for one article. Immutable after creation and
// consumed exactly once per pipeline run.
type Subject struct {
	Title       string      `json:"title"`        // Required, non-empty
	Description string      `json:"description"`  // One-line synopsis, may be empty
	Origin      Origin      `json:"origin"`       // Where the subject came from
	ContentType ContentType `json:"content_type"` // Style of article to write
	SourceLink  string      `json:"source_link"`  // Link to the feed entry, if any
}

// GeneratedArticle is the publish payload produced by the text generator.
type GeneratedArticle struct {
	Title        string `json:"title"`
	BodyHTML     string `json:"body_html"`     // Block-level markup, never empty
	SubjectTitle string `json:"subject_title"` // Title of the Subject it was written for
}

// RunStatus is the terminal state of one pipeline run.
type RunStatus string

const (
	StatusPublished RunStatus = "published"
	StatusFailed    RunStatus = "failed"
	StatusError     RunStatus = "error"
)

// PublishOutcome is the terminal record of one pipeline run. Exactly one is
// written to the run log per run, success or failure.
type PublishOutcome struct {
	RunID     string    `json:"run_id"`
	Status    RunStatus `json:"status"`
	Title     string    `json:"title"`
	URL       string    `json:"url"` // Present iff Status == StatusPublished
	Keywords  []string  `json:"keywords"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// UsedSubjectRecord is one row of the append-only used-subject set consulted
// by the topic selector to prevent repeats.
type UsedSubjectRecord struct {
	Title     string    `json:"title"`
	Origin    Origin    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"` // "reserved" or "published"
}

// FeedEntry is the normalized shape both tolerated feed wire formats reduce
// to before topic selection.
type FeedEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}
