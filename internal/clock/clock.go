// Package clock abstracts time for services that check expirations.
package clock

import (
	"time"

	"go.uber.org/fx"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

var Module = fx.Module("clock",
	fx.Provide(func() Clock { return SystemClock{} }),
)
