// Copyright (c) 2016 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link

import (
	"github.com/pkg/errors"
)

// L is a branch target.  Sites are the text offsets of branch instructions
// which refer to it.
type L struct {
	Name  string
	Sites []int32
	Addr  int32
	Bound bool
}

func (l *L) AddSite(addr int32) {
	l.Sites = append(l.Sites, addr)
}

func (l *L) Bind(addr int32) {
	if l.Bound {
		panic(errors.Errorf("label %q bound twice", l.Name))
	}
	l.Addr = addr
	l.Bound = true
}

func (l *L) FinalAddr() int32 {
	if !l.Bound {
		panic(errors.Errorf("label %q address undefined while updating branch instruction", l.Name))
	}
	return l.Addr
}
