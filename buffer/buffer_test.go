// Copyright (c) 2018 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package buffer

import (
	"testing"

	"github.com/armboot/pieboot/internal/pan"
	"github.com/stretchr/testify/assert"
)

func catch(f func()) (err error) {
	defer func() {
		err = pan.Error(recover())
	}()

	f()
	return
}

func TestStatic(t *testing.T) {
	s := NewStatic(make([]byte, 3, 8))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 8, s.Cap())

	s.PutUint32(0xe12fff1e)
	s.PutUint32(0xe3a00000)
	assert.Equal(t, []byte{0x1e, 0xff, 0x2f, 0xe1, 0x00, 0x00, 0xa0, 0xe3}, s.Bytes())

	assert.Equal(t, ErrStaticSize, catch(func() { s.PutUint32(0) }))
	assert.Equal(t, 8, s.Len())

	s.PutUint32At(4, 0xe1a00000)
	assert.Equal(t, uint32(0xe1a00000), s.Uint32At(4))
	assert.Equal(t, ErrAlignment, catch(func() { s.Uint32At(2) }))
}

func TestDynamicGrows(t *testing.T) {
	d := NewDynamic(nil)
	for i := uint32(0); i < 100; i++ {
		d.PutUint32(i)
	}
	assert.Equal(t, 400, d.Len())
	assert.Equal(t, uint32(99), d.Uint32At(396))
	assert.Equal(t, uint32(0), d.Uint32At(0))
}

func TestLimited(t *testing.T) {
	d := NewLimited(make([]byte, 0, 4), 8)
	d.PutUint32(1)
	d.PutUint32(2)
	assert.Equal(t, ErrSizeLimit, catch(func() { d.PutUint32(3) }))
	assert.Equal(t, 8, d.Len())
	assert.Equal(t, uint32(2), d.Uint32At(4))

	var limit interface{ BufferSizeLimit() string }
	assert.ErrorAs(t, ErrSizeLimit, &limit)
}
