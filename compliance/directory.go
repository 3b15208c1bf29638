package compliance

// Entry describes what is known about one asset. Explicit scores win over
// index lookups.
type Entry struct {
	Country         string
	Segment         string
	CorruptionIndex *float64
	ESGScore        *float64
}

// Directory resolves an asset to compliance Inputs. It is built once and
// only read afterwards.
type Directory struct {
	index   *Index
	entries map[string]Entry
}

func NewDirectory(ix *Index, entries map[string]Entry) *Directory {
	if ix == nil {
		ix = NewIndex(nil, nil)
	}
	d := &Directory{index: ix, entries: make(map[string]Entry, len(entries))}
	for k, e := range entries {
		d.entries[key(k)] = e
	}
	return d
}

// Lookup returns the Inputs for asset. Anything unknown stays nil so the
// scorer fails closed.
func (d *Directory) Lookup(asset string) Inputs {
	e := d.entries[key(asset)]
	in := Inputs{Segment: e.Segment}

	if e.CorruptionIndex != nil {
		v := *e.CorruptionIndex
		in.CorruptionIndex = &v
	} else if v, ok := d.index.CorruptionIndex(e.Country); ok {
		in.CorruptionIndex = &v
	}

	if e.ESGScore != nil {
		v := *e.ESGScore
		in.ESGScore = &v
	} else if v, ok := d.index.ESG(asset); ok {
		in.ESGScore = &v
	}
	return in
}
