package plugin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

var errMockNotObject = errors.New("plugin: mock value is not a JSON object")

func decodeMockLogged(flat string, logger *zap.Logger) Values {
	info, err := ParseMock(flat)
	if err != nil {
		logger.Warn("invalid mock plugin value, using defaults", zap.Error(err))
		return DefaultMockInfo()
	}
	return info
}

// ParseMock decodes the mock document. An empty string yields the default
// document. Unknown keys are kept in Extra.
func ParseMock(flat string) (MockInfo, error) {
	info := DefaultMockInfo()
	if strings.TrimSpace(flat) == "" {
		return info, nil
	}

	dec := json.NewDecoder(strings.NewReader(flat))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return DefaultMockInfo(), fmt.Errorf("plugin: parse mock: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return DefaultMockInfo(), errMockNotObject
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return DefaultMockInfo(), fmt.Errorf("plugin: parse mock: %w", err)
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return DefaultMockInfo(), fmt.Errorf("plugin: parse mock %q: %w", key, err)
		}
		switch key {
		case MockStatusKey:
			info.Status = mockStatus(raw)
		case MockPathKey:
			info.Path = rawString(raw)
		case MockHeadersKey:
			info.Headers = rawStrings(raw)
		case MockDataKey:
			info.Data = rawString(raw)
		default:
			var compact bytes.Buffer
			if err := json.Compact(&compact, raw); err != nil {
				return DefaultMockInfo(), fmt.Errorf("plugin: parse mock %q: %w", key, err)
			}
			info.Extra = append(info.Extra, ExtraField{Key: key, Value: json.RawMessage(compact.Bytes())})
		}
	}
	if _, err := dec.Token(); err != nil {
		return DefaultMockInfo(), fmt.Errorf("plugin: parse mock: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return DefaultMockInfo(), errors.New("plugin: parse mock: trailing data after object")
	}
	return info, nil
}

// mockStatus keeps positive integral numbers (or numeric strings) that fit a
// status code and maps everything else to nil.
func mockStatus(raw json.RawMessage) *int {
	var value any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return nil
	}
	var text string
	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return nil
	}
	return parseStatus(text)
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func rawStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, rawString(item))
	}
	return out
}

func encodeMock(v Values) (string, error) {
	return v.(MockInfo).Encode()
}

// Encode writes the mock document with keys in the order status, path,
// headers, data, followed by any extra keys. HTML characters are not escaped.
func (m MockInfo) Encode() (string, error) {
	headers := m.Headers
	if headers == nil {
		headers = []string{}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(first bool, key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		return writeJSON(&buf, value)
	}
	if err := write(true, MockStatusKey, m.Status); err != nil {
		return "", err
	}
	if err := write(false, MockPathKey, m.Path); err != nil {
		return "", err
	}
	if err := write(false, MockHeadersKey, headers); err != nil {
		return "", err
	}
	if err := write(false, MockDataKey, m.Data); err != nil {
		return "", err
	}
	for _, extra := range m.Extra {
		buf.WriteByte(',')
		if err := writeJSON(&buf, extra.Key); err != nil {
			return "", err
		}
		buf.WriteByte(':')
		if err := json.Compact(&buf, extra.Value); err != nil {
			return "", fmt.Errorf("plugin: encode mock %q: %w", extra.Key, err)
		}
	}
	buf.WriteByte('}')
	return buf.String(), nil
}

func writeJSON(buf *bytes.Buffer, value any) error {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("plugin: encode mock: %w", err)
	}
	buf.Write(bytes.TrimSuffix(out.Bytes(), []byte("\n")))
	return nil
}
