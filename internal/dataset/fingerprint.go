package dataset

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns a 16-hex-digit xxh3 digest of the dataset's content:
// record order, origin, field names, kinds and canonical values. Two loads of
// identical sources produce the same fingerprint.
func (d *Dataset) Fingerprint() string {
	h := xxh3.New()
	var sep = []byte{0x1f}
	for _, r := range d.records {
		_, _ = h.Write([]byte{byte(r.Origin)})
		for _, k := range r.keys {
			v := r.fields[k]
			_, _ = h.Write([]byte(k))
			_, _ = h.Write([]byte{byte(v.kind)})
			_, _ = h.Write([]byte(v.String()))
			_, _ = h.Write(sep)
		}
		_, _ = h.Write([]byte{0x1e})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
