package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/ghostkey/internal/engine/provenance"
	"github.com/dshills/ghostkey/internal/logging"
)

// Decode failures. They are logged, never returned.
var (
	errNotJSON      = errors.New("not valid JSON")
	errNotObject    = errors.New("top level is not an object")
	errNoRanges     = errors.New("neither an envelope nor a ranges object")
	errBadEnvelope  = errors.New("envelope data is not an object")
	errRangesType   = errors.New("ranges is not an array")
	errRangeType    = errors.New("range is not an object")
	errMissingField = errors.New("missing field")
	errFieldType    = errors.New("wrong field type")
	errBadSource    = errors.New("unknown source")
)

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithCodecClock sets the time source for "created" and for ranges stored
// without a timestamp.
func WithCodecClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCodecLogger sets the diagnostic logger for rejected input.
func WithCodecLogger(l *logging.Logger) CodecOption {
	return func(c *Codec) {
		if l != nil {
			c.log = l.WithComponent("metadata")
		}
	}
}

// Codec encodes and decodes provenance envelopes. A Codec is stateless apart
// from its options and safe for concurrent use.
type Codec struct {
	version string
	now     func() time.Time
	log     *logging.Logger
}

// NewCodec creates a codec writing the current envelope Version.
func NewCodec(opts ...CodecOption) *Codec {
	c := &Codec{
		version: Version,
		now:     time.Now,
		log:     logging.NullLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode wraps set in a versioned envelope and returns compact JSON. Keys
// are written in a fixed order, so two encodings of the same set differ only
// in "created".
func (c *Codec) Encode(set provenance.Set) (string, error) {
	env := envelopeJSON{Meta: envelopeBody{
		Version: c.version,
		Created: epoch(c.now()),
		Data:    payloadJSON{Ranges: make([]rangeJSON, 0, len(set))},
	}}
	for _, iv := range set {
		env.Meta.Data.Ranges = append(env.Meta.Data.Ranges, rangeJSON{
			Start:     iv.Start,
			End:       iv.End,
			Source:    iv.Source.String(),
			Timestamp: epoch(iv.Timestamp),
		})
	}

	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("encoding envelope: %w", err)
	}
	return string(out), nil
}

// Decode parses an envelope or a legacy {"ranges":[...]} object.
// It returns nil for blank input and for anything it cannot interpret; the
// reason is logged.
func (c *Codec) Decode(text string) *Metadata {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	md, err := c.decode(text)
	if err != nil {
		c.log.Warn("discarding metadata: %v", err)
		return nil
	}
	return md
}

func (c *Codec) decode(text string) (*Metadata, error) {
	if !gjson.Valid(text) {
		return nil, errNotJSON
	}
	root := gjson.Parse(text)
	if !root.IsObject() {
		return nil, errNotObject
	}

	md := &Metadata{}
	data := root
	if env := root.Get(envelopeKey); env.Exists() {
		if !env.IsObject() {
			return nil, errBadEnvelope
		}
		md.Version = env.Get(versionKey).String()
		if created := env.Get(createdKey); created.Type == gjson.Number {
			md.Created = parseEpoch(created.Float())
		}
		data = env.Get(dataKey)
		if !data.IsObject() {
			return nil, errBadEnvelope
		}
	}

	ranges := data.Get(rangesKey)
	if !ranges.Exists() {
		return nil, errNoRanges
	}
	if !ranges.IsArray() {
		return nil, errRangesType
	}

	items := ranges.Array()
	md.Ranges = make(provenance.Set, 0, len(items))
	for i, item := range items {
		iv, err := c.decodeInterval(item)
		if err != nil {
			return nil, fmt.Errorf("range %d: %w", i, err)
		}
		md.Ranges = append(md.Ranges, iv)
	}
	return md, nil
}

func (c *Codec) decodeInterval(item gjson.Result) (provenance.Interval, error) {
	if !item.IsObject() {
		return provenance.Interval{}, errRangeType
	}

	start, err := intField(item, startKey)
	if err != nil {
		return provenance.Interval{}, err
	}
	end, err := intField(item, endKey)
	if err != nil {
		return provenance.Interval{}, err
	}

	src := item.Get(sourceKey)
	if !src.Exists() {
		return provenance.Interval{}, fmt.Errorf("%w %q", errMissingField, sourceKey)
	}
	if src.Type != gjson.String {
		return provenance.Interval{}, fmt.Errorf("%w for %q", errFieldType, sourceKey)
	}
	source, ok := provenance.ParseSource(src.String())
	if !ok {
		return provenance.Interval{}, fmt.Errorf("%w %q", errBadSource, src.String())
	}

	ts := c.now()
	if raw := item.Get(timestampKey); raw.Type == gjson.Number {
		ts = parseEpoch(raw.Float())
	}

	return provenance.Interval{Start: start, End: end, Source: source, Timestamp: ts}, nil
}

// intField reads an integral JSON number. 5.0 and 5e0 are rejected, the
// same as a string would be.
func intField(item gjson.Result, key string) (int, error) {
	v := item.Get(key)
	if !v.Exists() {
		return 0, fmt.Errorf("%w %q", errMissingField, key)
	}
	if v.Type != gjson.Number || strings.ContainsAny(v.Raw, ".eE") {
		return 0, fmt.Errorf("%w for %q", errFieldType, key)
	}
	return int(v.Int()), nil
}

// Validate reports whether every interval is structurally sound: non-negative
// offsets, start before end and a manual or pasted source. Ordering and
// disjointness are not checked; see provenance.Set.CheckInvariants.
func (c *Codec) Validate(set provenance.Set) bool {
	for _, iv := range set {
		if !iv.IsValid() {
			return false
		}
	}
	return true
}
