package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection is a named partition of chunks by topic kind.
type Collection string

const (
	CollectionAuto         Collection = "auto"
	CollectionFAQs         Collection = "faqs"
	CollectionInstructions Collection = "instructions"
)

// Platform identifies the third-party courseware product an instruction
// chunk pertains to. Empty means the chunk is not platform-specific.
type Platform string

const (
	PlatformNone       Platform = ""
	PlatformCengage    Platform = "CENGAGE"
	PlatformMcGrawHill Platform = "MCGRAW_HILL"
	PlatformPearson    Platform = "PEARSON"
	PlatformBedford    Platform = "BEDFORD"
	PlatformSimucase   Platform = "SIMUCASE"
	PlatformWiley      Platform = "WILEY"
	PlatformSage       Platform = "SAGE"
	PlatformMacmillan  Platform = "MACMILLAN"
	PlatformZyBooks    Platform = "ZYBOOKS"
	PlatformClifton    Platform = "CLIFTON"
)

// Chunk is an immutable unit of retrievable reference text. Chunks are
// created at seed time and read-only afterwards.
type Chunk struct {
	ID         uuid.UUID  `db:"id"`
	Collection Collection `db:"collection"`
	Platform   Platform   `db:"platform"`
	Text       string     `db:"text"`
	Embedding  []float32  `db:"embedding"`
	Position   int        `db:"position"`
	CreatedAt  time.Time  `db:"created_at"`
}

// RetrievalResult is the best match for one query. Produced fresh per
// request, never persisted.
type RetrievalResult struct {
	Context     string
	Score       float64
	SourceID    string
	ArticleLink string // empty when the chunk carries no article link
}
