// Package archive packages rendered certificate documents into a single zip
// for batch downloads.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	dErrors "certifica/pkg/domain-errors"
)

// Entry is one document to place in the archive.
type Entry struct {
	Name string
	Data []byte
}

// Build writes the entries into a zip archive. Duplicate names are
// disambiguated with a numeric suffix so two subjects with the same name
// never overwrite each other.
func Build(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	seen := make(map[string]int, len(entries))
	for _, entry := range entries {
		name := dedupe(entry.Name, seen)
		f, err := w.Create(name)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create archive entry")
		}
		if _, err := f.Write(entry.Data); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not write archive entry")
		}
	}

	if err := w.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not finalize archive")
	}
	return buf.Bytes(), nil
}

// DocumentName builds a filesystem-safe archive entry name for a subject.
func DocumentName(subjectName, extension string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, subjectName)
	if safe == "" {
		safe = "certificate"
	}
	return "certificado_" + safe + "." + strings.TrimPrefix(extension, ".")
}

func dedupe(name string, seen map[string]int) string {
	seen[name]++
	if seen[name] == 1 {
		return name
	}
	ext := ""
	base := name
	if idx := strings.LastIndex(name, "."); idx > 0 {
		base, ext = name[:idx], name[idx:]
	}
	return fmt.Sprintf("%s_%d%s", base, seen[name], ext)
}
