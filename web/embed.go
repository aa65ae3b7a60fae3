// Package web carries the embedded HTML templates for the server-rendered
// screens.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates all:static
var embedded embed.FS

// Templates returns the template tree rooted at templates/.
func Templates() fs.FS {
	return subdir("templates")
}

// Static returns the static assets rooted at static/.
func Static() fs.FS {
	return subdir("static")
}

func subdir(name string) fs.FS {
	sub, err := fs.Sub(embedded, name)
	if err != nil {
		panic(err)
	}
	return sub
}
