package sites

import (
	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/transport"
)

// RegisterAll registers every concrete adapter this reimplementation ships
// against reg, binding each to httpT and (for adapters that declare a
// headless fallback) headlessT.
func RegisterAll(reg *adapter.Registry, httpT *transport.HTTP, headlessT *transport.Headless) {
	reg.Register(NewOfficials(httpT))
	reg.Register(NewPrestige(httpT))
	reg.Register(NewFC2PPVDB(httpT))
	reg.Register(NewAiravIO(httpT, headlessT))
	reg.Register(NewIqqtv(httpT))
	reg.Register(NewJavBus(httpT))
	reg.Register(NewAvWiki(httpT))
}
