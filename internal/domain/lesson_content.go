package domain

// Pure JSON contracts for the external generation services. Not DB models.

type DialogueTurn struct {
	Speaker  string `json:"speaker"`
	Dialogue string `json:"dialogue"`
}

type Speaker struct {
	Name    string `json:"name"`
	VoiceID string `json:"voice_id,omitempty"`
}

// Segment is one ordered unit of a generated lesson. When Transcript is
// present the segment is a multi-turn dialogue; otherwise Text is narrated
// by a single speaker.
type Segment struct {
	Type             string         `json:"type"`
	Title            string         `json:"title"`
	Text             string         `json:"text"`
	Transcript       []DialogueTurn `json:"transcript,omitempty"`
	DurationEstimate int            `json:"duration_estimate"`
}

type LessonContent struct {
	Title          string         `json:"title"`
	Summary        string         `json:"summary"`
	Script         string         `json:"script,omitempty"`
	Segments       []Segment      `json:"segments"`
	FullTranscript []DialogueTurn `json:"full_transcript,omitempty"`
	KeyTakeaways   []string       `json:"key_takeaways"`
	Speakers       []Speaker      `json:"speakers,omitempty"`
}

// LessonSpec is the input of one lesson generation attempt, persisted on
// the ai_job row and sent to the content service.
type LessonSpec struct {
	PlanID          string   `json:"planId"`
	LessonID        string   `json:"lessonId"`
	Topic           string   `json:"topic"`
	LessonNumber    int      `json:"lessonNumber"`
	TotalLessons    int      `json:"totalLessons"`
	UserLevel       string   `json:"userLevel"`
	DurationMinutes int      `json:"durationMinutes"`
	SourceURLs      []string `json:"sourceUrls,omitempty"`
	UserID          string   `json:"userId"`
}
