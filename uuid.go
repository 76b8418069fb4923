package nbt

import "github.com/google/uuid"

// UUID is written as its most significant half then its least significant
// half, each big-endian, which is the RFC 4122 byte order.
type UUID uuid.UUID

// NewUUID returns a random (version 4) UUID tag.
func NewUUID() UUID { return UUID(uuid.New()) }

// ParseUUID parses the textual form of a UUID.
func ParseUUID(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	return UUID(id), err
}

func (UUID) Type() *Type { return UUIDType }
func (u UUID) Value() any { return uuid.UUID(u) }
func (u UUID) Copy() Tag  { return u }
func (u UUID) String() string {
	return uuid.UUID(u).String()
}

func (u UUID) Write(w *Writer) error {
	w.WriteRaw(u[:])
	return w.Err()
}

func loadUUID(r *Reader) (Tag, error) {
	b, err := r.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	var u UUID
	copy(u[:], b)
	return u, nil
}
