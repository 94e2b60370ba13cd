package oxonium

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/glycokit/oxonium/blobstore"
	"github.com/glycokit/oxonium/codec"
	"github.com/glycokit/oxonium/fragment"
	"github.com/glycokit/oxonium/glycan"
)

var snapshotMagic = [4]byte{'O', 'X', 'I', '1'}

const snapshotFormatVersion = uint16(1)

// snapshotPayload is the codec-encoded body of a snapshot. Compositions
// travel as their canonical keys and are re-parsed on load.
type snapshotPayload struct {
	Fragments         []fragment.Fragment `json:"fragments"`
	FragmentIndex     map[string][]int    `json:"fragment_index"`
	GlycanToIndex     map[string]int      `json:"glycan_to_index"`
	IndexToSimplified map[int]int         `json:"index_to_simplified"`
	IndexToGlycan     map[int][]string    `json:"index_to_glycan"`
}

// Save persists a simplified index to the blob store so other workers can
// match against it without regenerating fragments.
//
// Format: header (magic, version, codec name, compression name) followed
// by the codec-encoded, optionally compressed payload. The header makes
// snapshots self-describing; loading never depends on local configuration.
func (ix *Index) Save(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()

	if ix.state != StateSimplified {
		return ErrNotSimplified
	}

	payload := snapshotPayload{
		Fragments:         ix.fragments,
		FragmentIndex:     ix.fragmentIndex,
		GlycanToIndex:     ix.glycanToIndex,
		IndexToSimplified: ix.indexToSimplified,
		IndexToGlycan:     make(map[int][]string, len(ix.indexToGlycan)),
	}
	for class, comps := range ix.indexToGlycan {
		keys := make([]string, len(comps))
		for i, c := range comps {
			keys[i] = c.Key()
		}
		payload.IndexToGlycan[class] = keys
	}

	body, err := ix.opts.codec.Marshal(payload)
	if err != nil {
		ix.opts.logger.LogSnapshot(ctx, "save", name, 0, err)
		return err
	}

	switch ix.opts.compression {
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return err
		}
		body = enc.EncodeAll(body, nil)
		enc.Close()
	case CompressionNone:
		// Raw codec bytes.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCompression, ix.opts.compression)
	}

	var buf bytes.Buffer
	writeHeader(&buf, ix.opts.codec.Name(), string(ix.opts.compression))
	buf.Write(body)

	err = store.Put(ctx, name, buf.Bytes())
	ix.opts.logger.LogSnapshot(ctx, "save", name, buf.Len(), err)
	ix.opts.metrics.RecordSnapshot("save", buf.Len(), time.Since(start), err)
	return err
}

// Load reads a snapshot back into a match-ready, simplified index.
// gen is retained for callers that rebuild later; it may be nil for a
// match-only index.
func Load(ctx context.Context, store blobstore.BlobStore, name string, gen fragment.Generator, optFns ...Option) (*Index, error) {
	start := time.Now()
	opts := applyOptions(optFns)

	rc, err := store.Open(ctx, name)
	if err != nil {
		opts.logger.LogSnapshot(ctx, "load", name, 0, err)
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		opts.logger.LogSnapshot(ctx, "load", name, 0, err)
		return nil, err
	}

	codecName, compName, body, err := readHeader(data)
	if err != nil {
		opts.logger.LogSnapshot(ctx, "load", name, len(data), err)
		return nil, err
	}

	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, codecName)
	}

	switch Compression(compName) {
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		body, err = dec.DecodeAll(body, nil)
		dec.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	case CompressionNone:
		// Raw codec bytes.
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, compName)
	}

	var payload snapshotPayload
	if err := c.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	ix := &Index{
		gen:               gen,
		opts:              opts,
		state:             StateSimplified,
		fragments:         payload.Fragments,
		fragmentIndex:     payload.FragmentIndex,
		glycanToIndex:     payload.GlycanToIndex,
		glycans:           make(map[string]*glycan.Composition, len(payload.GlycanToIndex)),
		indexToGlycan:     make(map[int][]*glycan.Composition, len(payload.IndexToGlycan)),
		indexToSimplified: payload.IndexToSimplified,
	}
	for key := range payload.GlycanToIndex {
		comp, err := glycan.Parse(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		ix.glycans[key] = comp
	}
	for class, keys := range payload.IndexToGlycan {
		comps := make([]*glycan.Composition, len(keys))
		for i, key := range keys {
			comp, ok := ix.glycans[key]
			if !ok {
				if comp, err = glycan.Parse(key); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
				}
			}
			comps[i] = comp
		}
		ix.indexToGlycan[class] = comps
	}

	opts.logger.LogSnapshot(ctx, "load", name, len(data), nil)
	opts.metrics.RecordSnapshot("load", len(data), time.Since(start), nil)
	return ix, nil
}

// Header layout, little-endian:
//
//	[0:4]  magic
//	[4:6]  format version
//	[6:8]  codec name length
//	[8:10] compression name length
//	then codec name bytes, compression name bytes.
func writeHeader(buf *bytes.Buffer, codecName, compName string) {
	var hdr [10]byte
	copy(hdr[0:4], snapshotMagic[:])
	binary.LittleEndian.PutUint16(hdr[4:6], snapshotFormatVersion)
	binary.LittleEndian.PutUint16(hdr[6:8], uint16(len(codecName)))
	binary.LittleEndian.PutUint16(hdr[8:10], uint16(len(compName)))
	buf.Write(hdr[:])
	buf.WriteString(codecName)
	buf.WriteString(compName)
}

func readHeader(data []byte) (codecName, compName string, body []byte, err error) {
	if len(data) < 10 || !bytes.Equal(data[0:4], snapshotMagic[:]) {
		return "", "", nil, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != snapshotFormatVersion {
		return "", "", nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, v)
	}
	codecLen := int(binary.LittleEndian.Uint16(data[6:8]))
	compLen := int(binary.LittleEndian.Uint16(data[8:10]))
	if len(data) < 10+codecLen+compLen {
		return "", "", nil, fmt.Errorf("%w: truncated header", ErrInvalidSnapshot)
	}
	codecName = string(data[10 : 10+codecLen])
	compName = string(data[10+codecLen : 10+codecLen+compLen])
	body = data[10+codecLen+compLen:]
	return codecName, compName, body, nil
}
