// SPDX-License-Identifier: MIT

package fit

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/katalvlaran/litefit/uncertainty"
)

// fingerprint hashes options, range, templates (ascending reference), data
// and sources (by name, then reference) with xxHash64.
func fingerprint(f *FrozenFit) uint64 {
	h := fpHasher{d: xxhash.New()}

	h.str(f.opts.strategy.String())
	h.float(f.opts.gamma)
	h.flag(f.opts.extrapolate)
	h.flag(f.opts.nuisance)
	h.flag(f.opts.logNormal)
	h.float(f.opts.condLimit)
	h.int(f.rng.First)
	h.int(f.rng.Last)

	for j, ref := range f.basis.References() {
		h.float(ref)
		h.floats(f.basis.Template(j))
	}
	h.floats(f.data)

	sorted := make([]*uncertainty.Source, len(f.sources))
	copy(sorted, f.sources)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Name() != sorted[b].Name() {
			return sorted[a].Name() < sorted[b].Name()
		}

		return sorted[a].Reference() < sorted[b].Reference()
	})
	for _, s := range sorted {
		h.str(s.Name())
		h.int(int(s.Scope()))
		h.int(int(s.Kind()))
		h.int(int(s.Mode()))
		h.float(s.Reference())
		h.float(s.Correlation())
		h.floats(s.Covariance().RawSymmetric().Data)
	}

	return h.d.Sum64()
}

type fpHasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (h *fpHasher) int(v int) {
	binary.LittleEndian.PutUint64(h.buf[:], uint64(v))
	_, _ = h.d.Write(h.buf[:])
}

func (h *fpHasher) float(v float64) {
	binary.LittleEndian.PutUint64(h.buf[:], math.Float64bits(v))
	_, _ = h.d.Write(h.buf[:])
}

func (h *fpHasher) floats(v []float64) {
	h.int(len(v))
	for _, x := range v {
		h.float(x)
	}
}

func (h *fpHasher) flag(v bool) {
	if v {
		h.int(1)

		return
	}
	h.int(0)
}

func (h *fpHasher) str(s string) {
	h.int(len(s))
	_, _ = h.d.WriteString(s)
}
