package resourceid

// ColumnAdapter converts between the external string seen by application
// code and the raw bytes persisted by a storage layer. Each persistence
// technology implements or wraps it once; the codec itself knows nothing
// about storage.
type ColumnAdapter interface {
	// ToStorage decodes an external id into the raw 16 bytes to persist.
	ToStorage(external string) ([]byte, error)
	// FromStorage encodes persisted raw bytes into the external id.
	FromStorage(raw []byte) (string, error)
}

// Column binds a Codec to one prefix, e.g. the primary key of one table.
type Column struct {
	codec  *Codec
	prefix string
}

var _ ColumnAdapter = Column{}

// NewColumn returns a Column for prefix. It fails with ErrInvalidPrefix if the
// prefix could never appear in an id.
func NewColumn(codec *Codec, prefix string) (Column, error) {
	if !ValidPrefix(prefix) {
		return Column{}, ErrInvalidPrefix
	}
	return Column{codec: codec, prefix: prefix}, nil
}

// Prefix returns the namespace this column encodes under.
func (c Column) Prefix() string { return c.prefix }

// ToStorage is Decode under the column prefix.
func (c Column) ToStorage(external string) ([]byte, error) {
	return c.codec.Decode(c.prefix, external)
}

// FromStorage is Encode under the column prefix.
func (c Column) FromStorage(raw []byte) (string, error) {
	return c.codec.Encode(c.prefix, raw)
}

// Default mints a new id for rows inserted without one.
func (c Column) Default() (string, error) {
	return c.codec.NewID(c.prefix)
}
