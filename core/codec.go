package core

import (
	"errors"
	"math"
	"slices"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// ErrCorruptRecord indicates an encoded record could not be decoded.
var ErrCorruptRecord = errors.New("corrupt record")

var (
	IDMUS       = idMUS{}
	DocumentMUS = documentMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// timeMUS stores a presence flag followed by Unix microseconds, so the zero
// time and the Unix epoch stay distinct.
var timeMUS = timeSer{}

type timeSer struct{}

func (timeSer) Marshal(v time.Time, bs []byte) (n int) {
	n = ord.Bool.Marshal(!v.IsZero(), bs)
	if !v.IsZero() {
		n += varint.Int64.Marshal(v.UnixMicro(), bs[n:])
	}
	return n
}

func (timeSer) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	present, n, err := ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return
	}
	micro, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func (timeSer) Size(v time.Time) (size int) {
	size = ord.Bool.Size(!v.IsZero())
	if !v.IsZero() {
		size += varint.Int64.Size(v.UnixMicro())
	}
	return size
}

type documentMUS struct{}

func (documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Body, bs[n:])
	n += ord.String.Marshal(string(v.SourceType), bs[n:])
	n += timeMUS.Marshal(v.Timestamp, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(v.Vector)), bs[n:])
	for _, f := range v.Vector {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	keys := sortedKeys(v.Metadata)
	n += varint.Uint64.Marshal(uint64(len(keys)), bs[n:])
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v.Metadata[k], bs[n:])
	}
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var (
		n1  int
		str string
		cnt uint64
	)
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Title, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Body, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	str, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.SourceType = SourceType(str)

	for _, dst := range []*time.Time{&v.Timestamp, &v.InsertedAt, &v.UpdatedAt} {
		*dst, n1, err = timeMUS.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}

	cnt, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	// Each element occupies at least one byte.
	if cnt > uint64(len(bs)-n) {
		err = ErrCorruptRecord
		return
	}
	if cnt > 0 {
		v.Vector = make([]float32, cnt)
		for i := range v.Vector {
			var bits uint32
			bits, n1, err = varint.Uint32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v.Vector[i] = math.Float32frombits(bits)
		}
	}

	cnt, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if cnt > uint64(len(bs)-n) {
		err = ErrCorruptRecord
		return
	}
	if cnt > 0 {
		v.Metadata = make(map[string]string, cnt)
		for range cnt {
			var key, val string
			key, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			val, n1, err = ord.String.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
			v.Metadata[key] = val
		}
	}
	return
}

func (documentMUS) Size(v Document) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Body)
	size += ord.String.Size(string(v.SourceType))
	size += timeMUS.Size(v.Timestamp)
	size += timeMUS.Size(v.InsertedAt)
	size += timeMUS.Size(v.UpdatedAt)
	size += varint.Uint64.Size(uint64(len(v.Vector)))
	for _, f := range v.Vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	size += varint.Uint64.Size(uint64(len(v.Metadata)))
	for k, val := range v.Metadata {
		size += ord.String.Size(k) + ord.String.Size(val)
	}
	return size
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
