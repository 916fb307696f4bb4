package task

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// ID is the structural identity of a task: the declared task name plus a
// digest of the full definition. Two structurally equal definitions (same
// name, same arguments, same upstream identities) yield equal IDs, so ID
// values are usable as map keys and as memoization keys.
type ID struct {
	// Name is the declared task name.
	Name string

	// Key is a truncated hex digest of the task's structure.
	Key string
}

// String renders the ID as "Name#key".
func (id ID) String() string {
	return id.Name + "#" + id.Key
}

// IsZero reports whether the ID is the zero value.
func (id ID) IsZero() bool {
	return id.Name == "" && id.Key == ""
}

// computeID derives a task's identity from its name, the canonical
// rendering of each named argument, and its upstream identities. Every
// field is length-prefixed before hashing so adjacent fields cannot
// collide by concatenation.
func computeID(name string, args []Arg, upstreams []ID) ID {
	h := sha256.New()
	hashField(h, name)
	for _, a := range args {
		hashField(h, a.Name)
		hashField(h, fmt.Sprintf("%#v", a.Value))
	}
	for _, u := range upstreams {
		hashField(h, u.String())
	}
	sum := h.Sum(nil)
	return ID{Name: name, Key: hex.EncodeToString(sum[:8])}
}

func hashField(w io.Writer, field string) {
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(len(field)))
	w.Write(size[:])
	w.Write([]byte(field))
}
