// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package file selects the object file format the assembled entry code is
// written in.  File refers to the format implementation; the shared struct
// is defined in github.com/armboot/pieboot/object/file/internal.
package file

import (
	"io"

	"github.com/armboot/pieboot"
)

var _ io.WriterTo = new(File)

// New object file containing an assembled thunk.
func New(obj *pieboot.Object) *File {
	return &File{Object: obj}
}
