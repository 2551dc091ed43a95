package rawimg

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Type tags a container format.
type Type int

const (
	TypeUnknown Type = iota
	TypeDDS
	TypeEDDS
	TypePSD
	TypeTGA
)

func (t Type) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeDDS:
		return "dds"
	case TypeEDDS:
		return "edds"
	case TypePSD:
		return "psd"
	case TypeTGA:
		return "tga"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// TypeFromPath maps the extension of path to a Type, ignoring case.
// The second result is false when the extension is not handled here.
func TypeFromPath(path string) (Type, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dds":
		return TypeDDS, true
	case ".edds":
		return TypeEDDS, true
	case ".psd":
		return TypePSD, true
	case ".tga":
		return TypeTGA, true
	default:
		return TypeUnknown, false
	}
}
