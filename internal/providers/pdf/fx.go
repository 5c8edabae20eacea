package pdf

import "go.uber.org/fx"

// Module wires the PDF document provider.
var Module = fx.Module("providers.pdf",
	fx.Provide(func() Provider { return NewPDFProvider() }),
)
