// Copyright (c) 2026 Timo Savola. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pieboot

import (
	"fmt"
)

// ConfigError describes a configuration which cannot be assembled.
type ConfigError struct {
	Field  string
	Reason string
}

func configError(field, format string, args ...any) *ConfigError {
	return &ConfigError{field, fmt.Sprintf(format, args...)}
}

func (e *ConfigError) Error() string {
	return "pieboot: " + e.Field + ": " + e.Reason
}

func (e *ConfigError) ConfigError() string {
	return e.Reason
}
