package contract

import "log/slog"

// dropInternal removes spectrainternal requests.
func (d *draft) dropInternal(logger *slog.Logger) {
	kept := d.requests[:0]
	dropped := 0
	for _, r := range d.requests {
		if r.Classification == SpectraInternal {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	d.requests = kept
	if dropped > 0 {
		logger.Debug("dropped internal requests", "count", dropped)
	}
}

// pruneTypes keeps only the types reachable from a request's params, payload
// or response, following element references transitively. Names resolve the
// way Spec.LookupType resolves them, so an ambiguous short name reaches
// nothing.
func (d *draft) pruneTypes(logger *slog.Logger) {
	index := newTypeIndex(len(d.types))
	for i, t := range d.types {
		index.add(t.Name, i)
	}

	reached := make(map[int]bool)
	var queue []int
	visit := func(ref TypeRef) {
		name := ref.Name
		if ref.IsCollection() {
			name = ref.Component
		}
		if i, ok := index.find(name); ok && !reached[i] {
			reached[i] = true
			queue = append(queue, i)
		}
	}
	for _, r := range d.requests {
		for _, p := range r.RequiredParams {
			visit(p.Type)
		}
		for _, p := range r.OptionalParams {
			visit(p.Type)
		}
		visit(r.Payload)
		if r.Response != nil {
			visit(r.Response.Type)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		for _, el := range d.types[i].Elements {
			visit(el.Type)
		}
	}

	kept := make([]Type, 0, len(reached))
	for i, t := range d.types {
		if reached[i] {
			kept = append(kept, t)
		}
	}
	if removed := len(d.types) - len(kept); removed > 0 {
		logger.Debug("pruned unused types", "count", removed)
	}
	d.types = kept
}
