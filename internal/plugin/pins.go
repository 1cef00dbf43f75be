package plugin

import (
	"log/slog"
	"sort"
	"sync"

	"gibridge/internal/engine/metadata"
	"gibridge/internal/engine/parser"
	"gibridge/internal/engine/resolver"
)

// Pin is the version of a namespace selected for the current session and
// the require_version call that selected it.
type Pin struct {
	Namespace string
	Version   string
	File      string
	Line      int
}

// pinSet holds the session's pins. The first file to pin a namespace owns
// the pin until that file stops pinning it; later conflicting pins only
// produce warnings.
type pinSet struct {
	mu   sync.Mutex
	pins map[string]Pin
}

func newPinSet() *pinSet {
	return &pinSet{pins: make(map[string]Pin)}
}

// settlePins applies the pins declared by records, which all come from the
// file at path.
func (p *Plugin) settlePins(path string, records []parser.DynamicImport) []resolver.Diagnostic {
	pinner, ok := p.provider.(metadata.VersionPinner)
	if !ok {
		return nil
	}

	wanted := make(map[string]parser.DynamicImport)
	var order []string
	for _, rec := range records {
		if rec.Version == "" {
			continue
		}
		if _, seen := wanted[rec.Namespace]; seen {
			continue
		}
		wanted[rec.Namespace] = rec
		order = append(order, rec.Namespace)
	}

	p.pins.mu.Lock()
	defer p.pins.mu.Unlock()

	for ns, pin := range p.pins.pins {
		if pin.File != path {
			continue
		}
		if rec, ok := wanted[ns]; ok && rec.Version == pin.Version {
			continue
		}
		p.unpinLocked(pinner, ns)
	}

	var diags []resolver.Diagnostic
	for _, ns := range order {
		rec := wanted[ns]
		if held, ok := p.pins.pins[ns]; ok {
			if held.Version != rec.Version {
				diags = append(diags, warning("%s:%d: %s is already pinned to version %s by %s:%d; ignoring version %s",
					rec.File, rec.PinLine, ns, held.Version, held.File, held.Line, rec.Version))
			}
			continue
		}
		if err := pinner.Require(ns, rec.Version); err != nil {
			diags = append(diags, warning("%s:%d: cannot pin %s to version %s: %v", rec.File, rec.PinLine, ns, rec.Version, err))
			continue
		}
		p.pins.pins[ns] = Pin{Namespace: ns, Version: rec.Version, File: path, Line: rec.PinLine}
		p.invalidate(ns)
		slog.Debug("namespace pinned", "namespace", ns, "version", rec.Version, "path", path)
	}
	return diags
}

func (p *Plugin) unpinLocked(pinner metadata.VersionPinner, ns string) {
	delete(p.pins.pins, ns)
	if err := pinner.Require(ns, ""); err != nil {
		slog.Warn("clear version pin", "namespace", ns, "error", err)
	}
	p.invalidate(ns)
}

// invalidate drops the host's cached answers for ns, which were computed
// against another version of its metadata.
func (p *Plugin) invalidate(ns string) {
	if p.table != nil {
		p.table.Invalidate(p.registrar.ModuleName(ns))
	}
}

// ReleasePins drops the pins owned by a file that left the analysis.
func (p *Plugin) ReleasePins(path string) {
	pinner, ok := p.provider.(metadata.VersionPinner)
	if !ok {
		return
	}
	p.pins.mu.Lock()
	defer p.pins.mu.Unlock()
	for ns, pin := range p.pins.pins {
		if pin.File == path {
			p.unpinLocked(pinner, ns)
		}
	}
}

// ResetPins starts a new analysis session with no namespace pinned.
func (p *Plugin) ResetPins() {
	pinner, ok := p.provider.(metadata.VersionPinner)
	if !ok {
		return
	}
	p.pins.mu.Lock()
	defer p.pins.mu.Unlock()
	for ns := range p.pins.pins {
		p.unpinLocked(pinner, ns)
	}
}

// Pins lists the session's pins by namespace.
func (p *Plugin) Pins() []Pin {
	p.pins.mu.Lock()
	defer p.pins.mu.Unlock()
	out := make([]Pin, 0, len(p.pins.pins))
	for _, pin := range p.pins.pins {
		out = append(out, pin)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Namespace < out[j].Namespace })
	return out
}

// AdoptPins re-applies the pins of prev, typically the plugin this one
// replaces after a configuration reload.
func (p *Plugin) AdoptPins(prev *Plugin) []resolver.Diagnostic {
	if prev == nil {
		return nil
	}
	pinner, ok := p.provider.(metadata.VersionPinner)
	if !ok {
		return nil
	}
	carried := prev.Pins()

	p.pins.mu.Lock()
	defer p.pins.mu.Unlock()
	var diags []resolver.Diagnostic
	for _, pin := range carried {
		if err := pinner.Require(pin.Namespace, pin.Version); err != nil {
			diags = append(diags, warning("%s:%d: cannot pin %s to version %s: %v", pin.File, pin.Line, pin.Namespace, pin.Version, err))
			continue
		}
		p.pins.pins[pin.Namespace] = pin
		p.invalidate(pin.Namespace)
	}
	return diags
}
