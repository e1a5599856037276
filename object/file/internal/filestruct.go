// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import (
	"github.com/armboot/pieboot"
)

// File represents a relocatable object containing an assembled thunk.
type File struct {
	Object *pieboot.Object
}
