package migrations

import (
	"embed"
	"io/fs"
)

//go:embed schema/**/*.sql
var schemaFS embed.FS

// Schema returns the embedded application schema (identities, interaction log).
func Schema() fs.FS {
	return sub("schema/app")
}

// LogSchema returns the embedded schema for the separate log database.
func LogSchema() fs.FS {
	return sub("schema/log")
}

func sub(dir string) fs.FS {
	fsys, err := fs.Sub(schemaFS, dir)
	if err != nil {
		panic(err) // should never happen since we control the embed path
	}
	return fsys
}
