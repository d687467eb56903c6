package interview

// QuestionView is the localized question shape returned to clients.
type QuestionView struct {
	ID    uint   `json:"id"`
	Order int    `json:"order"`
	Text  string `json:"text"`
}

// Progress is the position snapshot returned with every non-final answer.
type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Summary closes out a completed interview.
type Summary struct {
	TotalDuration     int     `json:"totalDuration"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	CompletionRate    float64 `json:"completionRate"`
}

// StartInput carries everything the start endpoint binds.
type StartInput struct {
	Email        string
	Name         string
	Language     string
	Position     string
	ConsentGiven bool
	IPAddress    string
	UserAgent    string
}

// StartResult is the session-start response payload.
type StartResult struct {
	SessionID    string        `json:"sessionId"`
	ApplicantID  string        `json:"applicantId"`
	Message      string        `json:"message"`
	NextQuestion *QuestionView `json:"nextQuestion"`
	Progress     Progress      `json:"progress"`
}

// SubmitResult is the answer-submission response payload. Exactly one of
// NextQuestion or Summary is set depending on IsComplete.
type SubmitResult struct {
	Message      string        `json:"message"`
	NextQuestion *QuestionView `json:"nextQuestion,omitempty"`
	IsComplete   bool          `json:"isComplete"`
	Progress     *Progress     `json:"progress,omitempty"`
	Summary      *Summary      `json:"summary,omitempty"`
}

// SessionSnapshot is the session detail payload.
type SessionSnapshot struct {
	ID                   string            `json:"id"`
	Status               string            `json:"status"`
	Language             string            `json:"language"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	StartedAt            string            `json:"startedAt"`
	CompletedAt          string            `json:"completedAt,omitempty"`
	TotalDuration        int               `json:"totalDuration"`
	AnsweredCount        int               `json:"answeredCount"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	Applicant            ApplicantSummary  `json:"applicant"`
}

// ApplicantSummary is the profile slice exposed on the session snapshot.
type ApplicantSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position"`
}

// EndResult is the end-session response payload.
type EndResult struct {
	TotalDuration int `json:"totalDuration"`
}
