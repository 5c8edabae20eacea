package telemetry

import "go.uber.org/fx"

// Module wires engine metrics.
var Module = fx.Module("telemetry",
	fx.Provide(NewMetrics),
)
