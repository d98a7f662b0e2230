// Package pathgen shards media files into directories derived from the
// media context and id.
package pathgen

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/sonata-project/SonataMediaBundle-sub001/internal/domain"
)

// Generator returns the directory a media's files are stored under.
type Generator interface {
	GeneratePath(media domain.Media) (string, error)
}

// NumericGenerator shards integer ids into <context>/<%04d>/<%02d>, with
// FirstLevel ids per top directory and SecondLevel ids per sub directory.
// A media without id lands in the first shard, as id 0 would.
type NumericGenerator struct {
	FirstLevel  int
	SecondLevel int
}

// NewNumericGenerator returns a generator with the default 100000/1000 split.
func NewNumericGenerator() *NumericGenerator {
	return &NumericGenerator{FirstLevel: 100000, SecondLevel: 1000}
}

func (g *NumericGenerator) GeneratePath(media domain.Media) (string, error) {
	const op = "pathgen.numeric"

	id := 0
	if media.HasID() {
		var err error
		id, err = strconv.Atoi(media.ID)
		if err != nil || id < 0 {
			return "", domain.Invalid(op, fmt.Sprintf("media id %q is not a positive integer", media.ID))
		}
	}

	rep1 := id/g.FirstLevel + 1
	rep2 := (id%g.FirstLevel)/g.SecondLevel + 1

	return fmt.Sprintf("%s/%04d/%02d", media.Context, rep1, rep2), nil
}

// UUIDGenerator shards uuid ids into <context>/<first 4 chars>/<next 2 chars>.
// A media without id lands in <context>/0000/00.
type UUIDGenerator struct{}

func (UUIDGenerator) GeneratePath(media domain.Media) (string, error) {
	const op = "pathgen.uuid"

	if !media.HasID() {
		return media.Context + "/0000/00", nil
	}
	if _, err := uuid.Parse(media.ID); err != nil {
		return "", domain.Invalid(op, fmt.Sprintf("media id %q is not a uuid", media.ID))
	}

	return fmt.Sprintf("%s/%s/%s", media.Context, media.ID[0:4], media.ID[4:6]), nil
}
