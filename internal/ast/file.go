package ast

import "vela/internal/source"

// File is a parsed source file: a flat list of top-level items. Module
// nesting is expressed through ModulePath, not a tree of File nodes.
type File struct {
	Source     source.FileID
	ModulePath string
	Items      []ItemID
	Span       source.Span
}

type Files struct{ arena Arena[File] }

func NewFiles(hint uint) *Files { return &Files{arena: *NewArena[File](hint)} }

func (f *Files) New(file File) FileID { return FileID(f.arena.Allocate(file)) }

func (f *Files) Get(id FileID) *File { return f.arena.Get(uint32(id)) }
