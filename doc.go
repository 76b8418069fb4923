// Package nbt implements the NBT (named binary tag) tree format: a closed
// set of tag types dispatched by a one byte id, a recursive binary codec and
// pluggable stream compression.
//
// A root is encoded as its type id followed by its payload. Compounds list
// their entries as id, key and payload and end with a zero byte. Lists and
// sets declare one element type and a varint count. Scalars are big-endian;
// numeric arrays are a varint byte length and little-endian elements.
//
// Read and Write never return errors: failures are logged through the
// Codec's slog.Logger and Read yields Empty. Use ReadTag and WriteTag, or a
// Codec's methods of the same name, when the caller needs the error.
package nbt
