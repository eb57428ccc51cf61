package splat

import (
	"fmt"

	"github.com/google/uuid"
)

type CloudId string

// Cloud is a scene-owned splat buffer: the direct splat records plus an
// optional parallel packed-color array with identical indexing. Buffers
// are immutable for the duration of a frame.
type Cloud struct {
	Id           CloudId
	Splats       []Splat
	PackedColors []PackedColor
}

func (c *Cloud) Count() uint32 {
	return uint32(len(c.Splats))
}

// CloudStore registers the splat buffers a frame can draw from.
type CloudStore struct {
	clouds map[CloudId]*Cloud
}

func NewCloudStore() *CloudStore {
	return &CloudStore{clouds: make(map[CloudId]*Cloud)}
}

// Add registers a splat buffer and returns its id. A packed-color buffer,
// when given, must parallel the splat array one to one.
func (s *CloudStore) Add(splats []Splat, packedColors []PackedColor) (*Cloud, error) {
	if packedColors != nil && len(packedColors) != len(splats) {
		return nil, fmt.Errorf("packed color buffer length %d does not match splat count %d",
			len(packedColors), len(splats))
	}
	c := &Cloud{
		Id:           makeCloudId(),
		Splats:       splats,
		PackedColors: packedColors,
	}
	s.clouds[c.Id] = c
	return c, nil
}

func (s *CloudStore) Get(id CloudId) (*Cloud, bool) {
	c, ok := s.clouds[id]
	return c, ok
}

func (s *CloudStore) Remove(id CloudId) {
	delete(s.clouds, id)
}

func makeCloudId() CloudId {
	return CloudId(uuid.NewString())
}
