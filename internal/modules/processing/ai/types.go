package ai

// Chunk types understood by the mnemonics frontend.
const (
	ChunkNormal  = "normal"
	ChunkHover   = "hover"
	ChunkAcronym = "acronym"
)

// BlurtResult grades a learner's recall attempt against the study material.
type BlurtResult struct {
	Accuracy     string   `json:"accuracy"`
	CorrectWords []string `json:"correct_words"`
	WrongWords   []string `json:"wrong_words"`
	MissedPoints []string `json:"missed_points"`
	ReviseAgain  []string `json:"revise_again"`
}

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FlashcardSet struct {
	Flashcards []Flashcard `json:"flashcards"`
}

// MnemonicDocument is study material broken into sections of emoji-tagged,
// chunked points.
type MnemonicDocument struct {
	Sections []MnemonicSection `json:"sections"`
}

type MnemonicSection struct {
	Heading      string          `json:"heading"`
	HeadingEmoji string          `json:"headingEmoji"`
	Points       []MnemonicPoint `json:"points"`
}

type MnemonicPoint struct {
	Chunks []MnemonicChunk `json:"chunks"`
	Emoji  string          `json:"emoji"`
}

// MnemonicChunk is a run of text. Hover chunks carry an Explanation and
// acronym chunks a FullForm.
type MnemonicChunk struct {
	Type        string  `json:"type"`
	Text        string  `json:"text"`
	Explanation *string `json:"explanation,omitempty"`
	FullForm    *string `json:"fullForm,omitempty"`
}

// studyValue is the project snapshot the frontend posts as "value".
// A nil Title means the key was absent.
type studyValue struct {
	ID            *int64  `json:"id"`
	Title         *string `json:"title"`
	StudyMaterial string  `json:"studyMaterial"`
}

type blurtDTO struct {
	Value  *studyValue `json:"value"  binding:"required"`
	Answer *string     `json:"answer" binding:"required"`
}

type studyDTO struct {
	Value *studyValue `json:"value" binding:"required"`
}
