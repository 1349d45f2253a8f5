package lesson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DecodeError reports malformed input together with its location.
type DecodeError struct {
	Path Path
	Msg  string
	Err  error
}

func (e *DecodeError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func malformed(path Path, format string, args ...any) error {
	return &DecodeError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

// rawObject is a JSON object that remembers its key order.
type rawObject struct {
	keys   []string
	values map[string]json.RawMessage
}

func newRawObject() *rawObject {
	return &rawObject{values: make(map[string]json.RawMessage)}
}

func (o *rawObject) has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.values[key]
	return ok
}

func (o *rawObject) get(key string) (json.RawMessage, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

func (o *rawObject) set(key string, v json.RawMessage) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func decodeObject(data json.RawMessage, path Path) (*rawObject, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, &DecodeError{Path: path, Msg: "invalid JSON", Err: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, malformed(path, "expected an object")
	}

	o := newRawObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, &DecodeError{Path: path, Msg: "invalid JSON", Err: err}
		}
		key, ok := tok.(string)
		if !ok {
			return nil, malformed(path, "expected an object key")
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, &DecodeError{Path: path.Field(key), Msg: "invalid JSON", Err: err}
		}
		o.set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, &DecodeError{Path: path, Msg: "invalid JSON", Err: err}
	}
	return o, nil
}

func decodeArray(data json.RawMessage, path Path) ([]json.RawMessage, error) {
	if t := bytes.TrimSpace(data); len(t) == 0 || t[0] != '[' {
		return nil, malformed(path, "expected an array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &DecodeError{Path: path, Msg: "invalid JSON", Err: err}
	}
	return items, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// decodeString reads an optional string key; null reads as "".
func decodeString(o *rawObject, key string, path Path) (string, error) {
	v, ok := o.get(key)
	if !ok || isNull(v) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", malformed(path.Field(key), "expected a string")
	}
	return s, nil
}

func requireKey(o *rawObject, key string, path Path) (json.RawMessage, error) {
	v, ok := o.get(key)
	if !ok {
		return nil, malformed(path, "missing required key %q", key)
	}
	return v, nil
}

// decodePositiveInt accepts a JSON number or a string of digits.
func decodePositiveInt(o *rawObject, key string, path Path) (int, error) {
	v, err := requireKey(o, key, path)
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(v))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(v, &text); err != nil {
			return 0, malformed(path.Field(key), "expected an integer")
		}
		text = strings.TrimSpace(text)
	}
	n, err := strconv.Atoi(text)
	if err != nil || n <= 0 {
		return 0, malformed(path.Field(key), "expected a positive integer, got %s", v)
	}
	return n, nil
}

// stringFields decodes the listed keys into their targets and records the
// originals so that untouched values are re-emitted verbatim.
func stringFields(o *rawObject, path Path, fields map[string]*string) (map[string]string, error) {
	orig := make(map[string]string, len(fields))
	for key, dst := range fields {
		s, err := decodeString(o, key, path)
		if err != nil {
			return nil, err
		}
		*dst = s
		if o.has(key) {
			orig[key] = s
		}
	}
	return orig, nil
}

// Decode parses a corpus file. The root must be an array of day records.
func Decode(data []byte) (*Document, error) {
	if t := bytes.TrimSpace(data); len(t) == 0 || t[0] != '[' {
		return nil, malformed("", "root must be an array of day records")
	}
	items, err := decodeArray(data, "")
	if err != nil {
		return nil, err
	}

	doc := &Document{Days: make([]*DayRecord, 0, len(items))}
	for i, item := range items {
		day, err := decodeDay(item, DayPath(i))
		if err != nil {
			return nil, err
		}
		doc.Days = append(doc.Days, day)
	}
	return doc, nil
}

func decodeDay(data json.RawMessage, path Path) (*DayRecord, error) {
	o, err := decodeObject(data, path)
	if err != nil {
		return nil, err
	}

	day := &DayRecord{raw: o}
	if day.Week, err = decodePositiveInt(o, "week", path); err != nil {
		return nil, err
	}
	if day.Day, err = decodePositiveInt(o, "day", path); err != nil {
		return nil, err
	}
	if v, ok := o.get("theme"); ok {
		// theme is informational; a non-string value is left as is
		_ = json.Unmarshal(v, &day.Theme)
	}

	content, err := requireKey(o, "content", path)
	if err != nil {
		return nil, err
	}
	items, err := decodeArray(content, path.Field("content"))
	if err != nil {
		return nil, err
	}
	day.Content = make([]*ContentBlock, 0, len(items))
	for j, item := range items {
		b, err := decodeBlock(item, path.Index("content", j))
		if err != nil {
			return nil, err
		}
		day.Content = append(day.Content, b)
	}
	return day, nil
}

func (b *ContentBlock) textFields() map[string]*string {
	fields := map[string]*string{"type": &b.Type}
	for _, p := range b.Pairs() {
		fields[p.TextKey] = p.Text
		fields[p.PinyinKey] = p.Pinyin
	}
	return fields
}

// blockKeyOrder is the emission order of block keys added after decoding.
var blockKeyOrder = []string{
	"title", "titlePinyin", "type",
	"author", "authorPinyin", "dynasty", "dynastyPinyin",
	"contentObject",
	"annotation", "annotationPinyin", "translation", "translationPinyin",
	"appreciation", "appreciationPinyin",
	"task", "taskPinyin", "taskAnswer", "taskAnswerPinyin",
}

func decodeBlock(data json.RawMessage, path Path) (*ContentBlock, error) {
	o, err := decodeObject(data, path)
	if err != nil {
		return nil, err
	}
	if _, err := requireKey(o, "type", path); err != nil {
		return nil, err
	}

	b := &ContentBlock{raw: o}
	if b.orig, err = stringFields(o, path, b.textFields()); err != nil {
		return nil, err
	}

	v, err := requireKey(o, "contentObject", path)
	if err != nil {
		return nil, err
	}
	objPath := path.Field("contentObject")
	items, err := decodeArray(v, objPath)
	if err != nil {
		return nil, err
	}

	if b.Type == TypeDailyAccumulation {
		b.Content.Shape = ShapeSectioned
		b.Content.Sections = make([]*Section, 0, len(items))
		for k, item := range items {
			s, err := decodeSection(item, path.Index("contentObject", k))
			if err != nil {
				return nil, err
			}
			b.Content.Sections = append(b.Content.Sections, s)
		}
		return b, nil
	}

	b.Content.Lines = make([]*Line, 0, len(items))
	for k, item := range items {
		l, err := decodeLine(item, path.Index("contentObject", k))
		if err != nil {
			return nil, err
		}
		b.Content.Lines = append(b.Content.Lines, l)
	}
	return b, nil
}

func decodeSection(data json.RawMessage, path Path) (*Section, error) {
	o, err := decodeObject(data, path)
	if err != nil {
		return nil, err
	}

	s := &Section{raw: o}
	s.orig, err = stringFields(o, path, map[string]*string{
		"title":       &s.Title,
		"titlePinyin": &s.TitlePinyin,
	})
	if err != nil {
		return nil, err
	}

	v, err := requireKey(o, "content", path)
	if err != nil {
		return nil, err
	}
	items, err := decodeArray(v, path.Field("content"))
	if err != nil {
		return nil, err
	}
	s.Lines = make([]*Line, 0, len(items))
	for m, item := range items {
		l, err := decodeLine(item, path.Index("content", m))
		if err != nil {
			return nil, err
		}
		s.Lines = append(s.Lines, l)
	}
	return s, nil
}

func decodeLine(data json.RawMessage, path Path) (*Line, error) {
	o, err := decodeObject(data, path)
	if err != nil {
		return nil, err
	}
	if _, err := requireKey(o, "text", path); err != nil {
		return nil, err
	}

	l := &Line{raw: o}
	l.orig, err = stringFields(o, path, map[string]*string{
		"text":   &l.Text,
		"pinyin": &l.Pinyin,
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Encode serializes doc as tab-indented JSON without HTML escaping. Unknown
// keys and unchanged values are written back byte for byte.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, day := range doc.Days {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeDay(&buf, day); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "\t"); err != nil {
		return nil, fmt.Errorf("indent document: %w", err)
	}
	return out.Bytes(), nil
}

func encodeDay(buf *bytes.Buffer, day *DayRecord) error {
	var content bytes.Buffer
	content.WriteByte('[')
	for j, b := range day.Content {
		if j > 0 {
			content.WriteByte(',')
		}
		if err := encodeBlock(&content, b); err != nil {
			return err
		}
	}
	content.WriteByte(']')

	known := map[string]json.RawMessage{"content": content.Bytes()}
	o := day.raw
	if o == nil {
		o = newRawObject()
		week, _ := json.Marshal(day.Week)
		d, _ := json.Marshal(day.Day)
		known["week"] = week
		known["day"] = d
	}
	return writeObject(buf, o, known, []string{"week", "day", "content"})
}

func encodeBlock(buf *bytes.Buffer, b *ContentBlock) error {
	known := make(map[string]json.RawMessage)
	for key, v := range b.textFields() {
		if err := putString(known, b.raw, b.orig, key, *v); err != nil {
			return err
		}
	}

	var obj bytes.Buffer
	obj.WriteByte('[')
	if b.Content.Shape == ShapeSectioned {
		for k, s := range b.Content.Sections {
			if k > 0 {
				obj.WriteByte(',')
			}
			if err := encodeSection(&obj, s); err != nil {
				return err
			}
		}
	} else {
		for k, l := range b.Content.Lines {
			if k > 0 {
				obj.WriteByte(',')
			}
			if err := encodeLine(&obj, l); err != nil {
				return err
			}
		}
	}
	obj.WriteByte(']')
	known["contentObject"] = obj.Bytes()

	return writeObject(buf, b.raw, known, blockKeyOrder)
}

func encodeSection(buf *bytes.Buffer, s *Section) error {
	known := make(map[string]json.RawMessage)
	if err := putString(known, s.raw, s.orig, "title", s.Title); err != nil {
		return err
	}
	if err := putString(known, s.raw, s.orig, "titlePinyin", s.TitlePinyin); err != nil {
		return err
	}

	var lines bytes.Buffer
	lines.WriteByte('[')
	for m, l := range s.Lines {
		if m > 0 {
			lines.WriteByte(',')
		}
		if err := encodeLine(&lines, l); err != nil {
			return err
		}
	}
	lines.WriteByte(']')
	known["content"] = lines.Bytes()

	return writeObject(buf, s.raw, known, []string{"title", "titlePinyin", "content"})
}

func encodeLine(buf *bytes.Buffer, l *Line) error {
	known := make(map[string]json.RawMessage)
	if err := putString(known, l.raw, l.orig, "text", l.Text); err != nil {
		return err
	}
	if _, ok := known["text"]; !ok {
		// text is required even when empty
		known["text"] = json.RawMessage(`""`)
	}
	if err := putString(known, l.raw, l.orig, "pinyin", l.Pinyin); err != nil {
		return err
	}
	return writeObject(buf, l.raw, known, []string{"text", "pinyin"})
}

// putString stores the encoding of a known string key. A key is emitted when
// it was present in the input or now holds a value; unchanged values reuse the
// original bytes.
func putString(known map[string]json.RawMessage, o *rawObject, orig map[string]string, key, value string) error {
	if raw, ok := o.get(key); ok && raw != nil {
		if was, seen := orig[key]; seen && was == value {
			known[key] = raw
			return nil
		}
	} else if !ok && value == "" {
		return nil
	}
	v, err := marshalString(value)
	if err != nil {
		return err
	}
	known[key] = v
	return nil
}

// writeObject emits o in its original key order with known values replacing
// the raw ones, then appends known keys that o lacks in the given order.
func writeObject(buf *bytes.Buffer, o *rawObject, known map[string]json.RawMessage, order []string) error {
	if o == nil {
		o = newRawObject()
	}
	buf.WriteByte('{')
	n := 0
	emit := func(key string, v json.RawMessage) error {
		if n > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalString(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		n++
		return nil
	}

	for _, key := range o.keys {
		v, ok := known[key]
		if !ok {
			v = o.values[key]
		}
		if v == nil {
			continue
		}
		if err := emit(key, v); err != nil {
			return err
		}
	}
	for _, key := range order {
		if v, ok := known[key]; ok && !o.has(key) {
			if err := emit(key, v); err != nil {
				return err
			}
		}
	}
	buf.WriteByte('}')
	return nil
}

func marshalString(s string) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode string: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
