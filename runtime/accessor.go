package runtime

import (
	"io"
	"os"

	"github.com/microsoft/schemy/lang"
)

// Accessor mediates all file-system access performed by the interpreter
// (spec.md §4.4): load and any host-defined I/O primitive must funnel
// through the single accessor an Interpreter is constructed with. There
// is no automatic file-system access outside of it (spec.md §1 Non-goals).
type Accessor interface {
	OpenRead(path string) (io.ReadCloser, error)
	OpenWrite(path string) (io.WriteCloser, error)
}

// DenyAccessor rejects every operation. It is the default accessor for an
// Interpreter constructed without one.
type DenyAccessor struct{}

func (DenyAccessor) OpenRead(path string) (io.ReadCloser, error) {
	return nil, lang.Errorf(lang.IoError, "file-system access is disabled: cannot open %q for reading", path)
}

func (DenyAccessor) OpenWrite(path string) (io.WriteCloser, error) {
	return nil, lang.Errorf(lang.IoError, "file-system access is disabled: cannot open %q for writing", path)
}

// ReadOnlyAccessor delegates reads to the host file system and rejects
// every write.
type ReadOnlyAccessor struct{}

func (ReadOnlyAccessor) OpenRead(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lang.Errorf(lang.IoError, "%v", err)
	}
	return f, nil
}

func (ReadOnlyAccessor) OpenWrite(path string) (io.WriteCloser, error) {
	return nil, lang.Errorf(lang.IoError, "file-system is read-only: cannot open %q for writing", path)
}
