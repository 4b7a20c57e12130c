package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock is the time source of the service layer.
type Clock interface {
	Now() time.Time
}

var Module = fx.Module("clock",
	fx.Provide(New),
)

type systemClock struct{}

func New() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}
