package batchmetrics

import "go.uber.org/fx"

var Module = fx.Module("batchmetrics",
	fx.Provide(New),
)
